package declare

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTarget is returned when a declaration names no target type.
	ErrMissingTarget = errors.New("declaration has no target type")

	// ErrMissingMixin is returned for a mixin slot without a mixin type.
	ErrMissingMixin = errors.New("mixin slot has no mixin type")

	// ErrMixinIsTarget is returned when the target is also declared as one of its own mixins.
	ErrMixinIsTarget = errors.New("mixin type is the target type")

	// ErrUnknownFormat is returned when a document format cannot be determined.
	ErrUnknownFormat = errors.New("unknown declaration document format")
)

// DuplicateMixinError reports a mixin type declared by more than one slot.
type DuplicateMixinError struct {
	Mixin  TypeID
	First  int
	Second int
}

func (e *DuplicateMixinError) Error() string {
	return fmt.Sprintf("mixin %s declared twice (slots %d and %d)", e.Mixin, e.First, e.Second)
}

// UnsupportedAPIVersionError reports a document whose apiVersion is outside
// the supported range.
type UnsupportedAPIVersionError struct {
	Version   string
	Supported string
}

func (e *UnsupportedAPIVersionError) Error() string {
	return fmt.Sprintf("unsupported apiVersion %q (supported: %s)", e.Version, e.Supported)
}
