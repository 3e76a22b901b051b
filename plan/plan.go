// Package plan merges the mixin order, the override chains and the
// capability graph of one composition into an immutable Plan.
//
// A Plan holds the resolved mixin order, one link pipeline per overridable
// member of the target and one binding per capability requirement. Plans
// carry no code; a backend turns them into a composed type.
package plan

import (
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/override"
)

// Handle is the call-forwarding reference a link uses to invoke the next
// link of its pipeline without knowing which one it is.
type Handle struct {
	Key   override.Key `json:"key" yaml:"key"`
	Depth int          `json:"depth" yaml:"depth"`
}

// Link is one implementation in a pipeline.
type Link struct {
	Key           override.Key   `json:"-" yaml:"-"`
	Owner         declare.TypeID `json:"owner" yaml:"owner"`
	DeclaringType declare.TypeID `json:"declaringType" yaml:"declaringType"`
	Depth         int            `json:"depth" yaml:"depth"`
}

// Next returns the handle bound to the following depth.
func (l Link) Next() Handle {
	return Handle{Key: l.Key, Depth: l.Depth + 1}
}

// Pipeline is the ordered invocation pipeline of one member signature.
type Pipeline struct {
	Key   override.Key     `json:"key" yaml:"key"`
	Links []Link           `json:"links" yaml:"links"`
	Chain []override.Entry `json:"chain" yaml:"chain"`
}

// Link returns the link at depth.
func (p Pipeline) Link(depth int) (Link, bool) {
	if depth < 0 || depth >= len(p.Links) {
		return Link{}, false
	}
	return p.Links[depth], true
}

func copyPipeline(p Pipeline) Pipeline {
	p.Links = append([]Link(nil), p.Links...)
	p.Chain = append([]override.Entry(nil), p.Chain...)
	return p
}

// ProviderKind says what satisfies a capability requirement.
type ProviderKind int

const (
	// ProviderMixin means a mixin implements the capability.
	ProviderMixin ProviderKind = iota
	// ProviderTarget means the target implements the capability.
	ProviderTarget
	// ProviderAggregate means every constituent of an aggregator is bound.
	ProviderAggregate
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderMixin:
		return "mixin"
	case ProviderTarget:
		return "target"
	case ProviderAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ProviderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Binding records how one capability requirement is satisfied.
type Binding struct {
	Capability declare.TypeID `json:"capability" yaml:"capability"`
	// Provider is the satisfying mixin or the target. It is empty for aggregates.
	Provider   declare.TypeID   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Kind       ProviderKind     `json:"kind" yaml:"kind"`
	RequiredBy []declare.TypeID `json:"requiredBy" yaml:"requiredBy"`
}

func copyBinding(b Binding) Binding {
	b.RequiredBy = append([]declare.TypeID(nil), b.RequiredBy...)
	return b
}

// Plan is the composition plan of one target and configuration. It is
// immutable; accessors return copies.
type Plan struct {
	target    declare.TypeID
	identity  string
	order     []declare.TypeID
	slots     []declare.MixinSlot
	pipelines []Pipeline
	bindings  []Binding
}

// Target returns the composed type.
func (p *Plan) Target() declare.TypeID {
	return p.target
}

// Identity returns the identity of the declaration the plan was built from.
func (p *Plan) Identity() string {
	return p.identity
}

// Order returns the resolved mixin order.
func (p *Plan) Order() []declare.TypeID {
	return append([]declare.TypeID(nil), p.order...)
}

// Slots returns the mixin slots in resolved order.
func (p *Plan) Slots() []declare.MixinSlot {
	out := make([]declare.MixinSlot, len(p.slots))
	for i, s := range p.slots {
		s.Requires = append([]declare.TypeID(nil), s.Requires...)
		out[i] = s
	}
	return out
}

// Pipelines returns every pipeline sorted by member name and signature.
func (p *Plan) Pipelines() []Pipeline {
	out := make([]Pipeline, len(p.pipelines))
	for i, pl := range p.pipelines {
		out[i] = copyPipeline(pl)
	}
	return out
}

// Pipeline returns the pipeline of a member signature.
func (p *Plan) Pipeline(key override.Key) (Pipeline, bool) {
	for _, pl := range p.pipelines {
		if pl.Key == key {
			return copyPipeline(pl), true
		}
	}
	return Pipeline{}, false
}

// Bindings returns the capability bindings in requirement order.
func (p *Plan) Bindings() []Binding {
	out := make([]Binding, len(p.bindings))
	for i, b := range p.bindings {
		out[i] = copyBinding(b)
	}
	return out
}

// Binding returns the binding of a capability.
func (p *Plan) Binding(capability declare.TypeID) (Binding, bool) {
	for _, b := range p.bindings {
		if b.Capability == capability {
			return copyBinding(b), true
		}
	}
	return Binding{}, false
}

// Document is the serializable snapshot of a Plan.
type Document struct {
	Target    declare.TypeID      `json:"target" yaml:"target"`
	Identity  string              `json:"identity" yaml:"identity"`
	Order     []declare.TypeID    `json:"order" yaml:"order"`
	Slots     []declare.MixinSlot `json:"slots" yaml:"slots"`
	Pipelines []Pipeline          `json:"pipelines" yaml:"pipelines"`
	Bindings  []Binding           `json:"bindings" yaml:"bindings"`
}

// Document returns a snapshot of the plan for encoding.
func (p *Plan) Document() Document {
	return Document{
		Target:    p.target,
		Identity:  p.identity,
		Order:     p.Order(),
		Slots:     p.Slots(),
		Pipelines: p.Pipelines(),
		Bindings:  p.Bindings(),
	}
}
