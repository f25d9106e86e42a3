// Package ref parses the passage references accepted by "vulgata show".
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref is a book with an optional chapter and verse range. Zero means the
// field was not given.
type Ref struct {
	Book     string `json:"book"`
	Chapter  int    `json:"chapter,omitempty"`
	Verse    int    `json:"verse,omitempty"`
	VerseEnd int    `json:"verse_end,omitempty"`
}

// refGrammar accepts "genesis", "genesis 1", "genesis 1:3", "genesis 1:3-5",
// "genesis.1.3", "1 Corinthios 13:4" and "Canticum Canticorum 2".
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Prefix  string       `parser:"@Int?"`
	Words   []string     `parser:"@Word+"`
	Chapter *chapterPart `parser:"\".\"? @@?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter int        `parser:"@Int"`
	Verse   *versePart `parser:"( ( \":\" | \".\" ) @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse int  `parser:"@Int"`
	End   *int `parser:"( \"-\" @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `[\p{L}(][\p{L}\p{M}()'\-]*`},
	{Name: "Punct", Pattern: `[.:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a passage reference. The book part is returned as typed, with
// runs of whitespace collapsed; resolving it to a slug is the caller's job.
func Parse(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", s, err)
	}

	words := parsed.Words
	if parsed.Prefix != "" {
		words = append([]string{parsed.Prefix}, words...)
	}
	r := &Ref{Book: strings.Join(words, " ")}

	if c := parsed.Chapter; c != nil {
		r.Chapter = c.Chapter
		if c.Verse != nil {
			r.Verse = c.Verse.Verse
			if c.Verse.End != nil {
				r.VerseEnd = *c.Verse.End
			}
		}
	}

	if r.Chapter == 0 && parsed.Chapter != nil {
		return nil, fmt.Errorf("invalid reference %q: chapter must be positive", s)
	}
	if parsed.Chapter != nil && parsed.Chapter.Verse != nil && r.Verse == 0 {
		return nil, fmt.Errorf("invalid reference %q: verse must be positive", s)
	}
	if r.VerseEnd != 0 && r.VerseEnd < r.Verse {
		return nil, fmt.Errorf("invalid reference %q: range ends before it starts", s)
	}
	return r, nil
}

// String formats r as "book chapter:verse-end".
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter > 0 {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(r.Verse))
			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}
	return sb.String()
}

// IsRange returns true if r spans multiple verses.
func (r *Ref) IsRange() bool {
	return r.VerseEnd > r.Verse
}

// Selects reports whether verse n of the referenced chapter is included.
func (r *Ref) Selects(n int) bool {
	switch {
	case r.Verse == 0:
		return true
	case r.VerseEnd > 0:
		return n >= r.Verse && n <= r.VerseEnd
	default:
		return n == r.Verse
	}
}
