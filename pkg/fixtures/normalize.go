package fixtures

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// clubAffixes are dropped from multi-word names so "FC Barcelona" and
// "Barcelona" share a key.
var clubAffixes = map[string]bool{
	"fc": true, "afc": true, "cf": true, "sc": true, "ac": true,
	"as": true, "ssc": true, "bc": true, "bk": true, "kk": true,
}

// NormalizeName builds the comparison key for a team or player name:
// lowercase, diacritics removed, every non-alphanumeric rune dropped.
func NormalizeName(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) > 1 {
		kept := tokens[:0]
		for _, tok := range tokens {
			if !clubAffixes[tok] {
				kept = append(kept, tok)
			}
		}
		if len(kept) > 0 {
			tokens = kept
		}
	}
	return strings.Join(tokens, "")
}
