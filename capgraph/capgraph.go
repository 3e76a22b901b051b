// Package capgraph builds the capability graph of a composition: one
// requirement node per distinct capability the mixins call back into, and one
// dependency edge per (mixin, capability) pair, with aggregator capabilities
// expanded into child dependencies.
//
// Nodes live in arenas and refer to each other by index. Back references
// (requirement -> requiring dependencies) are index slices, so the graph has
// no owning cycles and can be copied or serialized freely.
package capgraph

import (
	"github.com/lex00/wetwire-mixin-go/declare"
)

// RequirementID indexes Graph requirements.
type RequirementID int

// DependencyID indexes Graph dependencies.
type DependencyID int

// NoParent is the parent of a top-level dependency.
const NoParent DependencyID = -1

// Requirement is a capability scoped to the composition target.
type Requirement struct {
	ID         RequirementID
	Capability declare.TypeID
	Target     declare.TypeID
	// Aggregate is set when the capability is an aggregator.
	Aggregate bool
	// RequiredBy lists the dependencies pointing at this requirement.
	RequiredBy []DependencyID
}

// Dependency is a directed edge from a mixin to a requirement.
type Dependency struct {
	ID          DependencyID
	Mixin       declare.TypeID
	Requirement RequirementID
	// Parent is the aggregator dependency this edge was expanded from, or NoParent.
	Parent DependencyID
	// Children holds one dependency per constituent when the requirement is an aggregator.
	Children []DependencyID
}

// IsRoot reports whether the dependency was declared explicitly.
func (d Dependency) IsRoot() bool {
	return d.Parent == NoParent
}

// Graph is the capability graph of one declaration. It is read-only once
// built; accessors return copies.
type Graph struct {
	target       declare.TypeID
	mixins       []declare.TypeID
	requirements []Requirement
	dependencies []Dependency
	byCapability map[declare.TypeID]RequirementID
	roots        map[declare.TypeID][]DependencyID
}

// Target returns the composition target.
func (g *Graph) Target() declare.TypeID {
	return g.target
}

// Mixins returns the mixin ids in declaration order.
func (g *Graph) Mixins() []declare.TypeID {
	return append([]declare.TypeID(nil), g.mixins...)
}

// Requirements returns all requirements in creation order.
func (g *Graph) Requirements() []Requirement {
	out := make([]Requirement, len(g.requirements))
	for i, r := range g.requirements {
		out[i] = copyRequirement(r)
	}
	return out
}

// Requirement returns the requirement with the given id.
func (g *Graph) Requirement(id RequirementID) (Requirement, bool) {
	if id < 0 || int(id) >= len(g.requirements) {
		return Requirement{}, false
	}
	return copyRequirement(g.requirements[id]), true
}

// Dependency returns the dependency with the given id.
func (g *Graph) Dependency(id DependencyID) (Dependency, bool) {
	if id < 0 || int(id) >= len(g.dependencies) {
		return Dependency{}, false
	}
	return copyDependency(g.dependencies[id]), true
}

// Dependencies returns all dependencies in creation order.
func (g *Graph) Dependencies() []Dependency {
	out := make([]Dependency, len(g.dependencies))
	for i, d := range g.dependencies {
		out[i] = copyDependency(d)
	}
	return out
}

// Lookup finds the requirement for a capability.
func (g *Graph) Lookup(capability declare.TypeID) (Requirement, bool) {
	id, ok := g.byCapability[capability]
	if !ok {
		return Requirement{}, false
	}
	return copyRequirement(g.requirements[id]), true
}

// RootsOf returns the explicitly declared dependencies of a mixin.
func (g *Graph) RootsOf(mixin declare.TypeID) []Dependency {
	ids := g.roots[mixin]
	out := make([]Dependency, len(ids))
	for i, id := range ids {
		out[i] = copyDependency(g.dependencies[id])
	}
	return out
}

// Leaves returns the non-aggregator dependencies reachable from id,
// including id itself when it is not an aggregator, depth first.
func (g *Graph) Leaves(id DependencyID) []Dependency {
	var out []Dependency
	var walk func(DependencyID)
	walk = func(cur DependencyID) {
		d := g.dependencies[cur]
		if len(d.Children) == 0 && !g.requirements[d.Requirement].Aggregate {
			out = append(out, copyDependency(d))
			return
		}
		for _, child := range d.Children {
			walk(child)
		}
	}
	if id >= 0 && int(id) < len(g.dependencies) {
		walk(id)
	}
	return out
}

// RequiredCapabilities returns every capability a mixin depends on,
// aggregators and their constituents alike, in first-seen order.
func (g *Graph) RequiredCapabilities(mixin declare.TypeID) []declare.TypeID {
	var out []declare.TypeID
	seen := make(map[declare.TypeID]bool)
	var walk func(DependencyID)
	walk = func(cur DependencyID) {
		d := g.dependencies[cur]
		capability := g.requirements[d.Requirement].Capability
		if !seen[capability] {
			seen[capability] = true
			out = append(out, capability)
		}
		for _, child := range d.Children {
			walk(child)
		}
	}
	for _, id := range g.roots[mixin] {
		walk(id)
	}
	return out
}

// RequiringMixins returns the distinct mixins with a dependency on the
// requirement, in dependency creation order.
func (g *Graph) RequiringMixins(id RequirementID) []declare.TypeID {
	if id < 0 || int(id) >= len(g.requirements) {
		return nil
	}
	var out []declare.TypeID
	seen := make(map[declare.TypeID]bool)
	for _, depID := range g.requirements[id].RequiredBy {
		m := g.dependencies[depID].Mixin
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func copyRequirement(r Requirement) Requirement {
	r.RequiredBy = append([]DependencyID(nil), r.RequiredBy...)
	return r
}

func copyDependency(d Dependency) Dependency {
	d.Children = append([]DependencyID(nil), d.Children...)
	return d
}
