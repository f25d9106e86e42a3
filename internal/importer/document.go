// Package importer turns a published Bible dataset into the per-book JSON
// files read by the site builder.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/vulgata/core/errors"
)

// Document is the scrollmapper JSON layout every source is read into:
//
//	{"books":[{"name":..,"chapters":[{"chapter":1,"verses":[{"text":..}]}]}]}
type Document struct {
	Books []SourceBook `json:"books"`
}

// SourceBook is one book of a Document.
type SourceBook struct {
	Name     string          `json:"name"`
	Chapters []SourceChapter `json:"chapters"`
}

// SourceChapter is one chapter of a SourceBook.
type SourceChapter struct {
	Chapter Number        `json:"chapter"`
	Verses  []SourceVerse `json:"verses"`
}

// SourceVerse is one verse. Verses are numbered by position, so only the
// text is read; a missing or null text decodes as "".
type SourceVerse struct {
	Text string `json:"text"`
}

// Number is a chapter number that may arrive as a JSON number or as
// a numeric string. null decodes as 0; fractional numbers are truncated.
type Number int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number(int(f))
	return nil
}

// DecodeDocument parses a JSON Document. origin names the payload in errors.
func DecodeDocument(data []byte, origin string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParse("JSON", origin, err)
	}
	return &doc, nil
}
