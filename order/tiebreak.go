package order

import "fmt"

// FirstCandidate picks the candidate that appears first in the input, which
// for mixins is declaration order.
func FirstCandidate[T comparable](candidates []T) T {
	return candidates[0]
}

// Lexical picks the candidate with the smallest fmt.Sprint rendering. The
// result does not depend on input order unless two candidates render alike.
func Lexical[T comparable](candidates []T) T {
	best := candidates[0]
	bestKey := fmt.Sprint(best)
	for _, c := range candidates[1:] {
		if key := fmt.Sprint(c); key < bestKey {
			best, bestKey = c, key
		}
	}
	return best
}

// ByRank picks the candidate with the lowest rank; equal ranks fall back to
// input order.
func ByRank[T comparable](rank func(T) int) TieBreaker[T] {
	return func(candidates []T) T {
		best := candidates[0]
		bestRank := rank(best)
		for _, c := range candidates[1:] {
			if r := rank(c); r < bestRank {
				best, bestRank = c, r
			}
		}
		return best
	}
}

// Named returns the tie breaker registered under name: "declaration"
// (the default for an empty name) or "lexical".
func Named[T comparable](name string) (TieBreaker[T], error) {
	switch name {
	case "", "declaration", "first":
		return FirstCandidate[T], nil
	case "lexical", "alphabetical":
		return Lexical[T], nil
	default:
		return nil, fmt.Errorf("unknown tie break policy %q (expected declaration or lexical)", name)
	}
}
