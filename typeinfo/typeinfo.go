// Package typeinfo answers the questions the planner asks about types: what
// a type declares, whether a capability is an aggregator, and whether one type
// implements another.
//
// Providers may be backed by any introspection mechanism. Static describes
// types listed in a declaration document; GoSource reads Go interface and
// struct declarations.
package typeinfo

import (
	"github.com/lex00/wetwire-mixin-go/declare"
)

// Kind distinguishes capability interfaces from concrete types.
type Kind int

const (
	KindInterface Kind = iota
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Method is a member declared directly on a type.
type Method struct {
	Name      string
	Signature string
	// Overridable is the virtual-equivalent flag.
	Overridable bool
	// Shadows marks a redeclaration that hides an inherited member instead of overriding it.
	Shadows bool
}

// Descriptor is the declared surface of one type.
type Descriptor struct {
	ID   declare.TypeID
	Kind Kind
	// Methods declared on the type itself.
	Methods []Method
	// Embeds lists constituent capabilities (interfaces) or embedded base
	// types (structs), in declaration order.
	Embeds []declare.TypeID
}

// Provider describes types by id.
type Provider interface {
	// Describe returns the descriptor of id, or false when the type is unknown.
	Describe(id declare.TypeID) (Descriptor, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(id declare.TypeID) (Descriptor, bool)

// Describe implements Provider.
func (f ProviderFunc) Describe(id declare.TypeID) (Descriptor, bool) {
	return f(id)
}

// Chain returns a provider that asks each provider in turn.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(id declare.TypeID) (Descriptor, bool) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			if d, ok := p.Describe(id); ok {
				return d, true
			}
		}
		return Descriptor{}, false
	})
}
