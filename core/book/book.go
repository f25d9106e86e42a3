// Package book defines the per-book data files shared by the importer and the
// site builder, and loads them from a data directory.
package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Book is the on-disk record for one book: data/<slug>.json.
type Book struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Chapters Chapters `json:"chapters"`
}

// Chapters maps a positive chapter number to its verses in reading order.
// On the wire the keys are decimal strings; they are always written in
// ascending numeric order.
type Chapters map[int][]string

// Meta is the display metadata of a book, as listed in the site manifest.
type Meta struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Chapters int    `json:"chapters"`
}

// Record is a loaded book: its display metadata plus the raw chapter data.
type Record struct {
	Meta
	Data Chapters
}

// Numbers returns the chapter numbers in ascending order.
func (c Chapters) Numbers() []int {
	nums := make([]int, 0, len(c))
	for n := range c {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// ParseChapterKey converts a chapter key such as "12" to its number.
// Keys must be plain positive decimal integers; "01" is accepted as 1.
func ParseChapterKey(key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("empty chapter key")
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("chapter key %q is not a positive integer", key)
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("chapter key %q: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("chapter key %q is not a positive integer", key)
	}
	return n, nil
}

// UnmarshalJSON accepts an object keyed by chapter number whose values are
// arrays of verse strings. Anything else, including null, is rejected.
func (c *Chapters) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("must be an object keyed by chapter number")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	out := make(Chapters, len(raw))
	for key, value := range raw {
		n, err := ParseChapterKey(key)
		if err != nil {
			return err
		}
		if _, dup := out[n]; dup {
			return fmt.Errorf("chapter %d appears more than once", n)
		}
		var verses []string
		if v := bytes.TrimSpace(value); len(v) == 0 || v[0] != '[' {
			return fmt.Errorf("chapter %s: verses must be an array of strings", key)
		}
		if err := json.Unmarshal(value, &verses); err != nil {
			return fmt.Errorf("chapter %s: verses must be an array of strings", key)
		}
		out[n] = verses
	}
	*c = out
	return nil
}

// MarshalJSON writes chapters in ascending numeric order.
func (c Chapters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, n := range c.Numbers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(n)))
		buf.WriteByte(':')
		verses := c[n]
		if verses == nil {
			verses = []string{}
		}
		if err := enc.Encode(verses); err != nil {
			return nil, err
		}
		// Encode appends a newline after each value.
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode writes v as two-space indented JSON without HTML escaping, so
// non-ASCII text and markup characters are kept verbatim.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
