package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters NFD cannot decompose
var foldReplacer = strings.NewReplacer(
	"ø", "o", "Ø", "o",
	"æ", "ae", "Æ", "ae",
	"ß", "ss",
	"ł", "l", "Ł", "l",
)

// FoldKey reduces a name to its comparison key: lower case, diacritics
// removed, whitespace, hyphens and underscores dropped. "Järn", "jarn" and
// "JÄRN" share a key, as do "Roc 3" and "Roc3".
func FoldKey(s string) string {
	folded := FoldDiacritics(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '‐' || r == '‑' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FoldDiacritics strips combining marks and maps a few Nordic letters to ASCII.
// The result is lower case.
func FoldDiacritics(s string) string {
	s = foldReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
