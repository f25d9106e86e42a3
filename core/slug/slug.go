// Package slug derives URL-safe book identifiers from display names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is returned when a name has no ASCII letters or digits left.
const Fallback = "book"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make decomposes name, drops combining marks, lowercases it and collapses
// every run of characters outside [a-z0-9] into a single hyphen.
//
//	Make("Canticum Canticorum") == "canticum-canticorum"
//	Make("Ecclésiaste")         == "ecclesiaste"
func Make(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}
