// Package declare defines the plain-data composition declaration consumed by
// the mixin planner.
//
// A Declaration names a target type, the mixins to compose onto it (in
// declaration order) and the capability interfaces the composed type is
// declared to implement as a whole. Declarations are immutable input: every
// downstream structure (capability graph, override chains, plan) is derived
// from one and never written back into it.
package declare

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// TypeID identifies a type (target, mixin or capability).
type TypeID string

// UniversalBase is the type every other type is assignable to. Requirements
// on it are always satisfied and never materialized as graph nodes.
const UniversalBase TypeID = "any"

// IsUniversal reports whether id names the universal base type.
func IsUniversal(id TypeID) bool {
	switch strings.TrimSpace(string(id)) {
	case "", string(UniversalBase), "interface{}":
		return true
	}
	return false
}

// Kind describes how a mixin is attached to its target.
type Kind int

const (
	// KindExtending marks a mixin declared by the mixin itself as extending the target.
	KindExtending Kind = iota
	// KindUsed marks a mixin the target declares it uses.
	KindUsed
)

// String returns the declaration keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindExtending:
		return "extends"
	case KindUsed:
		return "uses"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k != KindExtending && k != KindUsed {
		return nil, fmt.Errorf("invalid mixin kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string
// decodes to KindExtending.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "extends", "extending":
		*k = KindExtending
	case "uses", "used":
		*k = KindUsed
	default:
		return fmt.Errorf("invalid mixin kind %q (expected extends or uses)", string(text))
	}
	return nil
}

// Visibility controls whether a mixin's introduced members are public on the
// composed type.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityPublic:
		return "public"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	if v != VisibilityPrivate && v != VisibilityPublic {
		return nil, fmt.Errorf("invalid visibility %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string
// decodes to VisibilityPrivate.
func (v *Visibility) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "private":
		*v = VisibilityPrivate
	case "public":
		*v = VisibilityPublic
	default:
		return fmt.Errorf("invalid visibility %q (expected private or public)", string(text))
	}
	return nil
}

// MixinSlot declares one mixin of a composition.
type MixinSlot struct {
	// Mixin is the mixin type.
	Mixin TypeID `json:"mixin" yaml:"mixin" toml:"mixin"`
	// Kind is how the mixin is attached (extends or uses).
	Kind Kind `json:"kind" yaml:"kind" toml:"kind"`
	// Visibility of the mixin's introduced members.
	Visibility Visibility `json:"visibility" yaml:"visibility" toml:"visibility"`
	// Requires lists the capability types the mixin calls back into.
	Requires []TypeID `json:"requires,omitempty" yaml:"requires,omitempty" toml:"requires,omitempty"`
}

// Declaration is the complete, resolved description of one composition.
type Declaration struct {
	// Target is the type the mixins are composed onto.
	Target TypeID `json:"target" yaml:"target" toml:"target"`
	// Mixins in declaration order.
	Mixins []MixinSlot `json:"mixins,omitempty" yaml:"mixins,omitempty" toml:"mixins,omitempty"`
	// Complete lists capability interfaces the composed type implements as a whole.
	Complete []TypeID `json:"complete,omitempty" yaml:"complete,omitempty" toml:"complete,omitempty"`
}

// Validate checks the structural invariants of the declaration.
func (d *Declaration) Validate() error {
	if IsUniversal(d.Target) {
		return ErrMissingTarget
	}
	seen := make(map[TypeID]int, len(d.Mixins))
	for i, slot := range d.Mixins {
		if strings.TrimSpace(string(slot.Mixin)) == "" {
			return fmt.Errorf("mixin slot %d: %w", i, ErrMissingMixin)
		}
		if slot.Mixin == d.Target {
			return fmt.Errorf("mixin slot %d (%s): %w", i, slot.Mixin, ErrMixinIsTarget)
		}
		if first, dup := seen[slot.Mixin]; dup {
			return &DuplicateMixinError{Mixin: slot.Mixin, First: first, Second: i}
		}
		seen[slot.Mixin] = i
	}
	return nil
}

// Slot returns the slot declaring mixin, if any.
func (d *Declaration) Slot(mixin TypeID) (MixinSlot, bool) {
	for _, slot := range d.Mixins {
		if slot.Mixin == mixin {
			return slot, true
		}
	}
	return MixinSlot{}, false
}

// MixinIDs returns the mixin ids in declaration order.
func (d *Declaration) MixinIDs() []TypeID {
	ids := make([]TypeID, len(d.Mixins))
	for i, slot := range d.Mixins {
		ids[i] = slot.Mixin
	}
	return ids
}

// IsComplete reports whether capability is listed as a complete interface.
func (d *Declaration) IsComplete(capability TypeID) bool {
	for _, c := range d.Complete {
		if c == capability {
			return true
		}
	}
	return false
}

// Identity returns a stable digest of the declaration. Two declarations with
// the same identity produce the same plan for the same type information.
func (d *Declaration) Identity() string {
	data, err := json.Marshal(d)
	if err != nil {
		// invalid Kind or Visibility values
		data = []byte(fmt.Sprintf("%#v", *d))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
