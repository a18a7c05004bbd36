package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// polishDiacritics is the locale letter set preserved verbatim during
// normalization. Member names in the source communities use these characters,
// so folding them away would merge distinct names.
var polishDiacritics = map[rune]struct{}{
	'ą': {}, 'ć': {}, 'ę': {}, 'ł': {}, 'ń': {}, 'ó': {}, 'ś': {}, 'ź': {}, 'ż': {},
}

// foldMarks decomposes characters and strips combining marks, so "é" becomes
// "e" and a decomposed "a"+combining-ogonek composes back before filtering.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a name and strips every character outside the
// alphanumeric-plus-Polish-diacritics set. Letters outside that set are folded
// to their unmarked base form first, since OCR output frequently carries stray
// accents from neighboring glyphs.
func Normalize(name string) string {
	lowered := strings.ToLower(norm.NFC.String(name))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if _, ok := polishDiacritics[r]; ok {
				b.WriteRune(r)
				continue
			}
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
			folded, _, err := transform.String(foldMarks, string(r))
			if err != nil {
				continue
			}
			for _, fr := range strings.ToLower(folded) {
				if (fr >= 'a' && fr <= 'z') || (fr >= '0' && fr <= '9') {
					b.WriteRune(fr)
				}
			}
		}
	}
	return b.String()
}
