// Package slug derives filesystem-safe path fragments from free-form
// titles and author names. Derivation is pure and deterministic: the
// same input always produces the same fragment, and applying it to its
// own output is a no-op.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxLen caps fragment length so derived file paths stay manageable.
const maxLen = 60

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)

	// foldAccents decomposes accented letters and drops the combining
	// marks, so "é" becomes "e" before the ASCII filter runs.
	foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Make converts text into a lowercase ASCII path fragment: accents are
// folded, characters outside [a-z0-9], whitespace and hyphens are
// dropped, whitespace runs become single hyphens, repeated hyphens
// collapse, and the result is trimmed and truncated to 60 characters.
func Make(text string) string {
	if folded, _, err := transform.String(foldAccents, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	text = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)

	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), "-")
	text = hyphenRun.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")

	if len(text) > maxLen {
		text = strings.Trim(text[:maxLen], "-")
	}
	return text
}
