// Package fuzzy scores the similarity of two strings on a 0..100 scale and
// extracts the best candidates for a query.
//
// The scorers belong to the "weighted ratio" family: a plain indel ratio, a
// partial (best substring window) ratio, and token-sort / token-set ratios that
// ignore word order. WRatio blends them, penalising large length disparities.
// Every scorer first normalises its inputs: NFKC, case folding, and replacing
// anything that is not a letter or digit with a space.
package fuzzy

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Algorithm selects a scorer.
type Algorithm int

const (
	// WRatio is the weighted blend of all scorers. It is the default.
	WRatio Algorithm = iota
	// Ratio is the normalised indel similarity of the whole strings.
	Ratio
	// PartialRatio is the best Ratio of the shorter string against any window of the longer.
	PartialRatio
	// TokenSortRatio compares the strings after sorting their words.
	TokenSortRatio
	// TokenSetRatio compares the shared and distinct word sets.
	TokenSetRatio
	// PartialTokenRatio is PartialRatio over sorted words, 100 when any word is shared.
	PartialTokenRatio
)

var algorithmNames = map[Algorithm]string{
	WRatio:            "wratio",
	Ratio:             "ratio",
	PartialRatio:      "partial_ratio",
	TokenSortRatio:    "token_sort_ratio",
	TokenSetRatio:     "token_set_ratio",
	PartialTokenRatio: "partial_token_ratio",
}

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// ParseAlgorithm parses a configuration name such as "wratio" or "token_set_ratio".
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for alg, name := range algorithmNames {
		if name == s {
			return alg, nil
		}
	}
	return WRatio, fmt.Errorf("unknown fuzzy algorithm %q", s)
}

// Match is one scored candidate.
type Match struct {
	Candidate string
	Score     float64
	// Index is the position of the candidate in the input slice.
	Index int
}

// Score returns the similarity of a and b under the algorithm.
// Strings that are equal after normalisation score 100, including two empty strings.
// If exactly one side is empty after normalisation the score is 0.
// Every algorithm is symmetric: Score(a, b) == Score(b, a).
func Score(a, b string, alg Algorithm) float64 {
	return scoreProcessed(process(a), process(b), alg)
}

// ExtractTop scores every candidate against query and returns the matches whose
// score is at least cutoff, sorted by descending score.
// Candidates with equal scores keep their input order, so the first one seen wins.
// A limit of zero or less returns every match above the cutoff.
// A query that is empty after normalisation matches nothing.
func ExtractTop(query string, candidates []string, alg Algorithm, limit int, cutoff float64) []Match {
	q := process(query)
	if q.text == "" {
		return nil
	}

	matches := make([]Match, 0, min(len(candidates), 16))
	for i, c := range candidates {
		score := scoreProcessed(q, process(c), alg)
		if score >= cutoff {
			matches = append(matches, Match{Candidate: c, Score: score, Index: i})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// ExtractBest returns the highest-scoring candidate, or false when no candidate
// reaches cutoff. Ties go to the earliest candidate.
func ExtractBest(query string, candidates []string, alg Algorithm, cutoff float64) (Match, bool) {
	q := process(query)
	if q.text == "" {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, c := range candidates {
		score := scoreProcessed(q, process(c), alg)
		if score < cutoff {
			continue
		}
		if best.Index < 0 || score > best.Score {
			best = Match{Candidate: c, Score: score, Index: i}
		}
	}
	return best, best.Index >= 0
}

func scoreProcessed(a, b processed, alg Algorithm) float64 {
	if a.text == b.text {
		return 100
	}
	if a.text == "" || b.text == "" {
		return 0
	}

	switch alg {
	case Ratio:
		return ratio(a.runes, b.runes)
	case PartialRatio:
		return partialRatio(a.runes, b.runes)
	case TokenSortRatio:
		return tokenSortRatio(a, b)
	case TokenSetRatio:
		return tokenSetRatio(a, b)
	case PartialTokenRatio:
		return partialTokenRatio(a, b)
	default:
		return weightedRatio(a, b)
	}
}
