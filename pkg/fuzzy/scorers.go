package fuzzy

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// processed is a normalised string, kept in the forms the scorers need.
type processed struct {
	text   string
	runes  []rune
	tokens []string
}

func process(s string) processed {
	// A Caser is stateful, so one is built per call.
	folded := cases.Fold().String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	text := strings.TrimSpace(b.String())
	return processed{
		text:   text,
		runes:  []rune(text),
		tokens: strings.Fields(text),
	}
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// ratio is the normalised indel similarity: 100 * (1 - indel / (len(a)+len(b))).
func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcs(a, b)) / float64(total)
}

func ratioStrings(a, b string) float64 {
	return ratio([]rune(a), []rune(b))
}

func partialRatio(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		if len(a) == len(b) {
			return 100
		}
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	best := partialWindows(a, b)
	if len(a) == len(b) && best < 100 {
		best = max(best, partialWindows(b, a))
	}
	return best
}

// partialWindows slides short across long, including the windows that only
// partly overlap either end of long.
func partialWindows(short, long []rune) float64 {
	n, m := len(short), len(long)
	best := 0.0

	for i := 1; i < n; i++ {
		if best = max(best, ratio(short, long[:i])); best == 100 {
			return best
		}
	}
	for i := 0; i <= m-n; i++ {
		if best = max(best, ratio(short, long[i:i+n])); best == 100 {
			return best
		}
	}
	for i := m - n + 1; i < m; i++ {
		if best = max(best, ratio(short, long[i:])); best == 100 {
			return best
		}
	}
	return best
}

func sortedJoin(tokens []string) string {
	sorted := slices.Clone(tokens)
	slices.Sort(sorted)
	return strings.Join(sorted, " ")
}

func tokenSortRatio(a, b processed) float64 {
	return ratioStrings(sortedJoin(a.tokens), sortedJoin(b.tokens))
}

// tokenSets splits the two token lists into the sorted shared words and the
// sorted words unique to each side.
func tokenSets(a, b processed) (shared, onlyA, onlyB []string) {
	inA := make(map[string]struct{}, len(a.tokens))
	for _, t := range a.tokens {
		inA[t] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b.tokens))
	for _, t := range b.tokens {
		inB[t] = struct{}{}
	}

	for t := range inA {
		if _, ok := inB[t]; ok {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range inB {
		if _, ok := inA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	slices.Sort(shared)
	slices.Sort(onlyA)
	slices.Sort(onlyB)
	return shared, onlyA, onlyB
}

func tokenSetRatio(a, b processed) float64 {
	shared, onlyA, onlyB := tokenSets(a, b)
	if len(shared) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sect := strings.Join(shared, " ")
	combinedA := joinNonEmpty(sect, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(sect, strings.Join(onlyB, " "))

	best := ratioStrings(combinedA, combinedB)
	if sect != "" {
		best = max(best, ratioStrings(sect, combinedA), ratioStrings(sect, combinedB))
	}
	return best
}

func partialTokenRatio(a, b processed) float64 {
	shared, onlyA, onlyB := tokenSets(a, b)
	if len(shared) > 0 {
		return 100
	}

	best := partialRatio([]rune(sortedJoin(a.tokens)), []rune(sortedJoin(b.tokens)))
	if best == 100 {
		return best
	}
	return max(best, partialRatio([]rune(strings.Join(onlyA, " ")), []rune(strings.Join(onlyB, " "))))
}

func weightedRatio(a, b processed) float64 {
	const unbaseScale = 0.95

	la, lb := float64(len(a.runes)), float64(len(b.runes))
	lenRatio := max(la, lb) / min(la, lb)

	best := ratio(a.runes, b.runes)
	if lenRatio < 1.5 {
		token := max(tokenSortRatio(a, b), tokenSetRatio(a, b))
		return max(best, token*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}

	best = max(best, partialRatio(a.runes, b.runes)*partialScale)
	return max(best, partialTokenRatio(a, b)*unbaseScale*partialScale)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
