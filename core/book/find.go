package book

import (
	"strings"

	"github.com/FocuswithJustin/vulgata/core/canon"
	"github.com/FocuswithJustin/vulgata/core/slug"
)

// Find resolves a user-typed book name to a loaded record. It tries, in
// order: the slug itself, the slug of the query, a canonical Latin name and
// finally the display names of the loaded books, case-insensitively.
func (l *Library) Find(query string) (*Record, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, false
	}
	if r, ok := l.BySlug[q]; ok {
		return r, true
	}
	if r, ok := l.BySlug[slug.Make(q)]; ok {
		return r, true
	}
	for _, e := range canon.Entries() {
		if strings.EqualFold(e.Name, q) {
			if r, ok := l.BySlug[e.Slug]; ok {
				return r, true
			}
		}
	}
	for _, m := range l.List {
		if strings.EqualFold(m.Name, q) {
			return l.BySlug[m.Slug], true
		}
	}
	return nil, false
}
