// Package textutil normalizes text extracted from rendered documents.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cleaner normalizes to NFC, strips invisible format runes (zero-width
// joiners and friends), and folds every Unicode space, including the
// non-breaking spaces common in rendered HTML, into a plain space.
var cleaner = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cf)),
	runes.Map(func(r rune) rune {
		if unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}),
)

// Clean returns s normalized and trimmed. Classification patterns match
// against cleaned text only.
func Clean(s string) string {
	out, _, err := transform.String(cleaner, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(out)
}

// Blank reports whether s cleans down to the empty string.
func Blank(s string) bool {
	return Clean(s) == ""
}
