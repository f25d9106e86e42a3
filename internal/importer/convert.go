package importer

import (
	"context"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/vulgata/core/book"
	"github.com/FocuswithJustin/vulgata/core/slug"
	"github.com/FocuswithJustin/vulgata/internal/logging"
)

// Convert reshapes doc into per-book records. Books without a name or
// without chapters are skipped, as are chapters with a non-positive number or
// no verses. A book left with no chapters is dropped. Verse text is trimmed.
// When a chapter number repeats, the later chapter wins.
func Convert(ctx context.Context, doc *Document) []book.Book {
	if doc == nil {
		return nil
	}

	out := make([]book.Book, 0, len(doc.Books))
	for _, sb := range doc.Books {
		if sb.Name == "" {
			logging.ImportSkipped(ctx, "book", "", "missing name")
			continue
		}
		if len(sb.Chapters) == 0 {
			logging.ImportSkipped(ctx, "book", sb.Name, "no chapters")
			continue
		}

		b := book.Book{
			Name:     sb.Name,
			Slug:     slug.Make(sb.Name),
			Chapters: make(book.Chapters, len(sb.Chapters)),
		}
		for _, sc := range sb.Chapters {
			num := int(sc.Chapter)
			if num <= 0 {
				logging.ImportSkipped(ctx, "chapter", sb.Name, "chapter number "+strconv.Itoa(num))
				continue
			}
			if len(sc.Verses) == 0 {
				logging.ImportSkipped(ctx, "chapter", sb.Name+" "+strconv.Itoa(num), "no verses")
				continue
			}
			verses := make([]string, len(sc.Verses))
			for i, v := range sc.Verses {
				verses[i] = strings.TrimSpace(v.Text)
			}
			b.Chapters[num] = verses
		}

		if len(b.Chapters) == 0 {
			logging.ImportSkipped(ctx, "book", sb.Name, "no usable chapters")
			continue
		}
		out = append(out, b)
	}
	return out
}
