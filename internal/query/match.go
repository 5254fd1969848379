package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const matchThreshold = 0.7

// BestMatch picks the candidate most similar to name by normalized
// Levenshtein distance. An exact match always wins.
func BestMatch(name string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c == name {
			return c, true
		}
	}

	target := fold(name)
	best := ""
	bestScore := -1.0

	for _, c := range candidates {
		folded := fold(c)
		distance := fuzzy.LevenshteinDistance(target, folded)
		maxLen := float64(max(utf8.RuneCountInString(target), utf8.RuneCountInString(folded)))
		if maxLen == 0 {
			continue
		}
		similarity := 1 - float64(distance)/maxLen

		if similarity > matchThreshold && similarity > bestScore {
			bestScore = similarity
			best = c
		}
	}

	return best, best != ""
}

func fold(s string) string {
	// Chained transformers carry state, so build one per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
