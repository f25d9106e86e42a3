package book

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/FocuswithJustin/vulgata/core/canon"
	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/internal/logging"
)

// Library is the result of loading a data directory.
type Library struct {
	// List holds display metadata in file order.
	List []Meta
	// BySlug holds the full record of every loaded book.
	BySlug map[string]*Record
}

// fileShape mirrors a book file loosely so that each field can be checked
// and reported on its own.
type fileShape struct {
	Name     any             `json:"name"`
	Slug     any             `json:"slug"`
	Chapters json.RawMessage `json:"chapters"`
}

// LoadDir reads every *.json file in dir, in lexical filename order.
// A missing directory yields an empty library. The first malformed file
// aborts the load with a *errors.ParseError or *errors.ValidationError
// naming it.
func LoadDir(dir string) (*Library, error) {
	lib := &Library{
		List:   []Meta{},
		BySlug: make(map[string]*Record),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, errors.NewIO("read directory", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		b, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if _, dup := lib.BySlug[b.Slug]; dup {
			return nil, errors.NewValidation(path, "slug", "duplicate slug "+b.Slug)
		}

		name := b.Name
		if latin, ok := canon.Lookup(b.Slug); ok {
			name = latin
		}
		meta := Meta{Name: name, Slug: b.Slug, Chapters: len(b.Chapters)}
		lib.List = append(lib.List, meta)
		lib.BySlug[b.Slug] = &Record{Meta: meta, Data: b.Chapters}
		logging.BookLoaded(path, b.Slug, meta.Chapters)
	}

	return lib, nil
}

// LoadFile reads and validates a single book file.
func LoadFile(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			return nil, errors.NewValidation(path, "", "book file must be a JSON object")
		}
		return nil, errors.NewParse("JSON", path, err)
	}

	name, ok := shape.Name.(string)
	if !ok || name == "" {
		return nil, errors.NewValidation(path, "name", "must be a non-empty string")
	}
	slug, ok := shape.Slug.(string)
	if !ok || slug == "" {
		return nil, errors.NewValidation(path, "slug", "must be a non-empty string")
	}

	chapters := Chapters{}
	if len(shape.Chapters) > 0 {
		if err := chapters.UnmarshalJSON(shape.Chapters); err != nil {
			return nil, &errors.ValidationError{
				Path:    path,
				Field:   "chapters",
				Message: err.Error(),
				Err:     errors.ErrInvalidInput,
			}
		}
	}

	return &Book{Name: name, Slug: slug, Chapters: chapters}, nil
}

// Order arranges books for navigation: every canonical slug present, in
// canonical order, then the remaining books sorted by display name.
func Order(list []Meta) []Meta {
	bySlug := make(map[string]Meta, len(list))
	for _, m := range list {
		bySlug[m.Slug] = m
	}

	ordered := make([]Meta, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, e := range canon.Entries() {
		if m, ok := bySlug[e.Slug]; ok {
			ordered = append(ordered, m)
			seen[e.Slug] = true
		}
	}

	var extras []Meta
	for _, m := range list {
		if !seen[m.Slug] {
			extras = append(extras, m)
		}
	}
	sort.SliceStable(extras, func(i, j int) bool {
		return extras[i].Name < extras[j].Name
	})

	return append(ordered, extras...)
}

// Ordered returns the library's books in navigation order.
func (l *Library) Ordered() []Meta {
	return Order(l.List)
}
