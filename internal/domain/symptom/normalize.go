// Package symptom holds the per-request symptom report and the text normalizer
// used by keyword matching.
package symptom

import (
	"strings"
	"unicode"
)

// Normalize lowercases text and drops every rune that is not a letter, digit,
// underscore or whitespace. Word boundaries are kept as-is. Normalize is total
// and idempotent.
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, text)
}
