package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes raw user text: NFKC, lower-case, punctuation and
// symbols collapsed to single spaces, whitespace runs collapsed, trimmed.
// Total and idempotent; empty input yields empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	folded := strings.ToLower(norm.NFKC.String(raw))

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			// Punctuation, symbols, and whitespace all separate words.
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Tokenize splits normalized text into its whitespace-delimited words.
func Tokenize(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
