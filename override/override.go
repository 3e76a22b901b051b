// Package override orders the declarations of one member signature along a
// type hierarchy and answers which of them are overridden by a more derived
// declaration.
package override

import (
	"github.com/lex00/wetwire-mixin-go/declare"
)

// Key identifies a member signature.
type Key struct {
	Name      string `json:"name" yaml:"name"`
	Signature string `json:"signature" yaml:"signature"`
}

func (k Key) String() string {
	return k.Name + " " + k.Signature
}

// Member is one declaration of a member signature.
type Member struct {
	// Owner is the composition participant (target or mixin) contributing the member.
	Owner declare.TypeID `json:"owner" yaml:"owner"`
	// DeclaringType is the type that declares the member, the owner or one of its bases.
	DeclaringType declare.TypeID `json:"declaringType" yaml:"declaringType"`
	Name          string         `json:"name" yaml:"name"`
	Signature     string         `json:"signature" yaml:"signature"`
	Overridable   bool           `json:"overridable" yaml:"overridable"`
	Shadows       bool           `json:"shadows,omitempty" yaml:"shadows,omitempty"`
}

// Key returns the member's signature key.
func (m Member) Key() Key {
	return Key{Name: m.Name, Signature: m.Signature}
}

func (m Member) String() string {
	return string(m.DeclaringType) + "." + m.Name
}

// Hierarchy answers assignability between declaring types.
type Hierarchy interface {
	// IsSupertype reports whether derived is assignable to base. It is reflexive.
	IsSupertype(base, derived declare.TypeID) bool
}

// Layers is a Hierarchy in which every type is a supertype of the types
// listed after it.
type Layers struct {
	rank map[declare.TypeID]int
}

// NewLayers returns the hierarchy of types, most basic first. Repeated types
// keep their first position.
func NewLayers(types ...declare.TypeID) *Layers {
	l := &Layers{rank: make(map[declare.TypeID]int, len(types))}
	for _, t := range types {
		if _, ok := l.rank[t]; !ok {
			l.rank[t] = len(l.rank)
		}
	}
	return l
}

// IsSupertype implements Hierarchy. Types outside the layers are only
// related to themselves.
func (l *Layers) IsSupertype(base, derived declare.TypeID) bool {
	if base == derived {
		return true
	}
	b, okBase := l.rank[base]
	d, okDerived := l.rank[derived]
	return okBase && okDerived && b < d
}

// Types returns the layered types, most basic first.
func (l *Layers) Types() []declare.TypeID {
	out := make([]declare.TypeID, len(l.rank))
	for t, r := range l.rank {
		out[r] = t
	}
	return out
}
