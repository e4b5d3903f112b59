package recon

import (
	"math"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// similarity scores two account names in [0,100]. Names that normalize
// equal score 100 without touching the edit-distance path. Otherwise the
// score is the better of the plain Levenshtein ratio and the ratio over
// token-sorted names, so reordered word sets still score highly.
func similarity(a, b string) int {
	na := normalizeName(a)
	nb := normalizeName(b)

	if na == nb {
		if na == "" {
			return 0
		}
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}

	score := levenshteinRatio(na, nb)
	if ts := levenshteinRatio(sortTokens(na), sortTokens(nb)); ts > score {
		score = ts
	}
	return score
}

// levenshteinRatio converts edit distance into a 0-100 percentage over the
// longer string.
func levenshteinRatio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 0
	}
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	ratio := (1.0 - float64(distance)/float64(maxLen)) * 100.0
	if ratio < 0 {
		ratio = 0
	}
	return int(math.Round(ratio))
}
