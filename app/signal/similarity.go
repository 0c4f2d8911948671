package signal

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented and unaccented
// spellings of the same name compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeadline lowercases a headline, folds diacritics and collapses
// runs of whitespace to a single space. All similarity comparisons operate
// on normalized headlines.
func NormalizeHeadline(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// SimilarityRatio computes a length-aware sequence similarity between two
// normalized strings: 2*LCS(a,b) / (len(a)+len(b)), in [0,1]. Identical
// strings score 1.0, strings with no common subsequence score 0.0.
func SimilarityRatio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)

	// Single-row LCS to keep memory bounded on long descriptions.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]

	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// HeadlineSimilarity normalizes both headlines and returns their similarity
// ratio.
func HeadlineSimilarity(a, b string) float64 {
	return SimilarityRatio(NormalizeHeadline(a), NormalizeHeadline(b))
}
