// Package order sorts items that depend on each other into a deterministic
// application order.
//
// Sort repeatedly picks a root: an item no remaining item has to follow.
// When several roots are available a TieBreaker chooses one, so identical
// inputs always produce identical output. An item depending on itself, or a
// remaining set without any root, is a configuration error.
package order

import (
	"fmt"
)

// Relation is the direct dependency between two items.
type Relation int

const (
	// None means neither item depends on the other.
	None Relation = iota
	// AOnB means the first item depends on the second, so the second precedes it.
	AOnB
	// BOnA means the second item depends on the first, so the first precedes it.
	BOnA
)

func (r Relation) String() string {
	switch r {
	case None:
		return "none"
	case AOnB:
		return "a-on-b"
	case BOnA:
		return "b-on-a"
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// Analyzer reports the direct dependency between a and b.
type Analyzer[T comparable] func(a, b T) Relation

// TieBreaker picks one of several candidates. It must be deterministic and
// must return one of the candidates. Candidates are passed in input order.
type TieBreaker[T comparable] func(candidates []T) T

// Sort orders items so that every item comes after the items it depends on.
//
// A nil tieBreak behaves like FirstCandidate.
func Sort[T comparable](items []T, analyze Analyzer[T], tieBreak TieBreaker[T]) ([]T, error) {
	if tieBreak == nil {
		tieBreak = FirstCandidate[T]
	}

	index := make(map[T]int, len(items))
	for i, item := range items {
		if _, dup := index[item]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateItem, item)
		}
		index[item] = i
	}

	for _, item := range items {
		if analyze(item, item) != None {
			return nil, &SelfDependencyError{Mixin: fmt.Sprint(item)}
		}
	}

	// before[i][j]: items[i] has to precede items[j]
	n := len(items)
	before := make([][]bool, n)
	for i := range before {
		before[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			switch analyze(items[i], items[j]) {
			case AOnB:
				before[j][i] = true
			case BOnA:
				before[i][j] = true
			}
		}
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	result := make([]T, 0, n)
	for len(remaining) > 0 {
		candidates := roots(remaining, before)
		var chosen int
		switch len(candidates) {
		case 0:
			members := make([]string, len(remaining))
			for k, i := range remaining {
				members[k] = fmt.Sprint(items[i])
			}
			return nil, &CircularDependencyError{Members: members}
		case 1:
			chosen = candidates[0]
		default:
			values := make([]T, len(candidates))
			for k, i := range candidates {
				values[k] = items[i]
			}
			picked := tieBreak(values)
			idx, ok := index[picked]
			if !ok || !contains(candidates, idx) {
				return nil, fmt.Errorf("%w: %v is not a candidate", ErrInvalidTieBreak, picked)
			}
			chosen = idx
		}

		result = append(result, items[chosen])
		remaining = remove(remaining, chosen)
	}
	return result, nil
}

// roots returns the remaining indices no other remaining index has to precede.
func roots(remaining []int, before [][]bool) []int {
	var out []int
	for _, i := range remaining {
		blocked := false
		for _, j := range remaining {
			if j != i && before[j][i] {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, i)
		}
	}
	return out
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func remove(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
