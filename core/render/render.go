// Package render fills the site's page template and produces the chapter body
// markup.
//
// Templates carry placeholders of the form {{key}}. Substitution is literal:
// there are no conditionals, loops or escaping. Placeholders with no matching
// field are left in the output untouched.
package render

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/FocuswithJustin/vulgata/core/errors"
)

// Placeholder keys used by the page template.
const (
	KeyTitle       = "title"
	KeyAssetsBase  = "assets_base"
	KeyRootBase    = "root_base"
	KeyBookSlugJS  = "book_slug_js"
	KeyChapterJS   = "chapter_js"
	KeyContentHTML = "content_html"
)

// NullJS is the script literal used when no book or chapter is selected.
const NullJS = "null"

//go:embed templates/page.html
var defaultTemplate string

//go:embed static
var static embed.FS

// Field is a single named substitution.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered set of substitutions. Later fields with the same key
// replace earlier ones.
type Fields []Field

// Set stores value under key, converting it with fmt.Sprint.
func (f *Fields) Set(key string, value any) {
	s := fmt.Sprint(value)
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = s
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: s})
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Placeholder returns the template token for key.
func Placeholder(key string) string {
	return "{{" + key + "}}"
}

// Render replaces every placeholder of every field in tmpl, in field order.
func Render(tmpl string, fields Fields) string {
	out := tmpl
	for _, f := range fields {
		out = strings.ReplaceAll(out, Placeholder(f.Key), f.Value)
	}
	return out
}

// ChapterContent builds the body markup of a chapter page: a heading with the
// book name and chapter number, then one block per verse numbered by position.
// When escape is set, the name and verse text are HTML-escaped.
func ChapterContent(bookName string, chapter int, verses []string, escape bool) string {
	if escape {
		bookName = html.EscapeString(bookName)
	}

	parts := make([]string, 0, 1+4*len(verses))
	parts = append(parts, fmt.Sprintf(`<h1 class="chapter-title h3 mb-4">%s %d</h1>`, bookName, chapter))
	for i, verse := range verses {
		if escape {
			verse = html.EscapeString(verse)
		}
		parts = append(parts,
			`<div class="verse">`,
			`  <span class="verse-num">`+strconv.Itoa(i+1)+`</span><span class="verse-text">`+verse+`</span>`,
			`</div>`,
			`<hr>`,
		)
	}
	return strings.Join(parts, "\n")
}

// HomeContent builds the body of the index page around a prompt message.
func HomeContent(prompt string, escape bool) string {
	if escape {
		prompt = html.EscapeString(prompt)
	}
	return `<div class="lead">` + prompt + `</div>`
}

// JSString returns s as a double-quoted script string literal. Non-ASCII
// characters are written as \uXXXX escapes, so the result is plain ASCII.
func JSString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\b':
			sb.WriteString(`\b`)
		case r == '\f':
			sb.WriteString(`\f`)
		case r < 0x20 || (r >= 0x7f && r <= 0xffff):
			fmt.Fprintf(&sb, `\u%04x`, r)
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// DefaultTemplate returns the built-in page template.
func DefaultTemplate() string {
	return defaultTemplate
}

// LoadTemplate reads the template at path, or returns the built-in template
// when path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIO("read template", path, err)
	}
	return string(data), nil
}

// StaticAssets returns the client-side files served next to books.json.
func StaticAssets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(fmt.Sprintf("render: embedded static assets: %v", err))
	}
	return sub
}
