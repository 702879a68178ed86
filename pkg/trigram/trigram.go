// Package trigram computes string similarity the way the postgres pg_trgm extension does, so
// that catalog stores evaluated in process rank and admit wines exactly like the database.
package trigram

import (
	"strings"
	"unicode"
)

type Set map[string]struct{}

// Extract returns the trigrams of text. Words are runs of letters and digits, lower-cased and
// padded with two leading blanks and one trailing blank before being cut into three-rune windows.
func Extract(text string) Set {
	trigrams := make(Set)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, word := range words {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			trigrams[string(padded[i:i+3])] = struct{}{}
		}
	}

	return trigrams
}

// Similarity is the number of shared trigrams divided by the number of distinct trigrams of
// both strings. It is 0 when either string has no trigrams.
func Similarity(a, b string) float64 {
	return Compare(Extract(a), Extract(b))
}

func Compare(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shared := 0

	for trigram := range a {
		if _, ok := b[trigram]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(a)+len(b)-shared)
}
