// Package textnorm turns raw text into the canonical form shared by indexing and querying.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, strips accents, replaces every non-word rune with
// a space and collapses whitespace. Word runes are letters, digits and '_'.
// It never fails: empty or blank input yields "".
func Normalize(text string) string {
	lower := strings.TrimSpace(strings.ToLower(text))
	if lower == "" {
		return ""
	}
	// Chains carry state, so each call builds its own.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(strip, lower)
	if err != nil {
		plain = lower
	}

	var b strings.Builder
	b.Grow(len(plain))
	pending := false
	for _, r := range plain {
		if !IsWord(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens normalizes text and splits it on whitespace.
func Tokens(text string) []string {
	n := Normalize(text)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// IsWord reports whether r belongs to the word class kept by Normalize.
func IsWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
