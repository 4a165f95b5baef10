package schema

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// minSimilarity is the threshold below which two names are not considered
// related. 0.6 catches casing slips, pluralization, and one-character typos
// without suggesting unrelated fields.
const minSimilarity = 0.6

// foldCaser is a package-level Unicode case folder for performance.
var foldCaser = cases.Fold()

// closestMatch returns the candidate most similar to target, if any
// candidate clears the similarity threshold. Comparison is case-folded so
// "Owner" suggests "owner". Ties keep the earlier candidate, which is
// deterministic because callers pass sorted slices.
func closestMatch(target string, candidates []string) (string, bool) {
	foldedTarget := foldCaser.String(target)

	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		score := similarity(foldedTarget, foldCaser.String(candidate))
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if bestScore < minSimilarity {
		return "", false
	}
	return best, true
}

// similarity computes a normalized Levenshtein similarity between two
// strings: 1.0 for identical, 0.0 for maximally distant. Distances are
// computed over runes, so lengths use rune counts for consistency.
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(s1, s2)

	maxLen := utf8.RuneCountInString(s1)
	if n := utf8.RuneCountInString(s2); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(distance)/float64(maxLen)
}
