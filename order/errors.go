package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateItem is returned when the same item is passed to Sort twice.
	ErrDuplicateItem = errors.New("duplicate item")

	// ErrInvalidTieBreak is returned when a tie breaker picks a non-candidate.
	ErrInvalidTieBreak = errors.New("tie breaker returned an item that is not a candidate")
)

// CircularDependencyError reports that no remaining mixin can be ordered
// next. Members is the whole remaining set, not a reconstructed cycle path.
type CircularDependencyError struct {
	Members []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency among mixins: %s", strings.Join(e.Members, ", "))
}

// SelfDependencyError reports a mixin that depends on itself.
type SelfDependencyError struct {
	Mixin string
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("mixin %s depends on itself", e.Mixin)
}
