package textutil

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity is the best of TokenSetSimilarity and StringSimilarity, in [0, 1].
func Similarity(a, b string) float64 {
	return max(TokenSetSimilarity(a, b), StringSimilarity(a, b))
}

// StringSimilarity compares whole normalized strings with Jaro-Winkler.
func StringSimilarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, metrics.NewJaroWinkler())
}

// TokenSetSimilarity compares the word sets of a and b. When one set contains
// the other the result is 1; otherwise the sorted intersection is compared to
// each side with Levenshtein similarity and the best ratio wins.
func TokenSetSimilarity(a, b string) float64 {
	ta, tb := uniqueSorted(Tokens(a)), uniqueSorted(Tokens(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		inB[t] = struct{}{}
	}
	var inter, diffA []string
	for _, t := range ta {
		if _, ok := inB[t]; ok {
			inter = append(inter, t)
			delete(inB, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	diffB := make([]string, 0, len(inB))
	for t := range inB {
		diffB = append(diffB, t)
	}
	sort.Strings(diffB)

	if len(inter) > 0 && (len(diffA) == 0 || len(diffB) == 0) {
		return 1
	}

	sect := strings.Join(inter, " ")
	left := strings.TrimSpace(sect + " " + strings.Join(diffA, " "))
	right := strings.TrimSpace(sect + " " + strings.Join(diffB, " "))

	lev := metrics.NewLevenshtein()
	best := strutil.Similarity(left, right, lev)
	if sect != "" {
		best = max(best, strutil.Similarity(sect, left, lev), strutil.Similarity(sect, right, lev))
	}
	return best
}

func uniqueSorted(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	sort.Strings(tokens)
	out := tokens[:1]
	for _, t := range tokens[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
