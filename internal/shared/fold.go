package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldKey lowercases s, folds diacritics ("Tiësto" -> "tiesto") and drops everything that is not a letter or digit.
//
// It is the comparison key for fingerprints and vocabulary lookups.
func FoldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fingerprint builds the duplicate bucket key for an artist/title pair.
func Fingerprint(artist, title string) string {
	return FoldKey(artist) + FoldKey(title)
}
