package importer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/internal/logging"
	"github.com/FocuswithJustin/vulgata/internal/validation"
)

// WriteBooks writes each book to <dir>/<slug>.json and returns the number of
// files written. Two books sharing a slug write the same file; the later one
// wins and a warning is logged.
func WriteBooks(ctx context.Context, dir string, books []book.Book) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.NewIO("create data directory", dir, err)
	}

	seen := make(map[string]string, len(books))
	written := 0
	for _, b := range books {
		if err := validation.ValidateFilename(b.Slug + ".json"); err != nil {
			return written, &errors.ValidationError{Field: "slug", Message: err.Error(), Err: err}
		}
		if prev, ok := seen[b.Slug]; ok {
			logging.WarnContext(ctx, "duplicate slug, overwriting",
				"slug", b.Slug,
				"previous", prev,
				"name", b.Name,
			)
		}
		seen[b.Slug] = b.Name

		data, err := book.Encode(b)
		if err != nil {
			return written, errors.Wrapf(err, "encode %s", b.Slug)
		}
		path := filepath.Join(dir, b.Slug+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, errors.NewIO("write", path, err)
		}
		logging.DebugContext(ctx, "book_written", "path", path, "chapters", len(b.Chapters))
		written++
	}
	return written, nil
}
