package capgraph

import (
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/order"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// Build derives the capability graph of decl. It has no side effects.
//
// A mixin listing itself as a requirement fails with
// order.SelfDependencyError before anything else is examined. Requirements on
// the universal base type are skipped. Aggregator capabilities are expanded
// recursively; an aggregator that contains itself fails with
// AggregationCycleError.
func Build(decl *declare.Declaration, p typeinfo.Provider) (*Graph, error) {
	for _, slot := range decl.Mixins {
		for _, req := range slot.Requires {
			if req == slot.Mixin {
				return nil, &order.SelfDependencyError{Mixin: string(slot.Mixin)}
			}
		}
	}
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		provider: p,
		graph: &Graph{
			target:       decl.Target,
			mixins:       decl.MixinIDs(),
			byCapability: make(map[declare.TypeID]RequirementID),
			roots:        make(map[declare.TypeID][]DependencyID),
		},
	}

	for _, slot := range decl.Mixins {
		declared := make(map[declare.TypeID]bool, len(slot.Requires))
		for _, capability := range slot.Requires {
			if declare.IsUniversal(capability) || declared[capability] {
				continue
			}
			declared[capability] = true

			id, err := b.attach(slot.Mixin, capability, NoParent, nil)
			if err != nil {
				return nil, err
			}
			b.graph.roots[slot.Mixin] = append(b.graph.roots[slot.Mixin], id)
		}
	}
	return b.graph, nil
}

type builder struct {
	provider typeinfo.Provider
	graph    *Graph
}

// requirementFor finds or creates the requirement for capability.
func (b *builder) requirementFor(capability declare.TypeID) RequirementID {
	if id, ok := b.graph.byCapability[capability]; ok {
		return id
	}
	id := RequirementID(len(b.graph.requirements))
	b.graph.requirements = append(b.graph.requirements, Requirement{
		ID:         id,
		Capability: capability,
		Target:     b.graph.target,
		Aggregate:  typeinfo.IsAggregator(b.provider, capability),
	})
	b.graph.byCapability[capability] = id
	return id
}

// attach creates the dependency mixin -> capability under parent and expands
// aggregators. path holds the capabilities currently being expanded.
func (b *builder) attach(mixin, capability declare.TypeID, parent DependencyID, path []declare.TypeID) (DependencyID, error) {
	for i, onPath := range path {
		if onPath == capability {
			cycle := append(append([]declare.TypeID(nil), path[i:]...), capability)
			return 0, &AggregationCycleError{Path: cycle}
		}
	}

	reqID := b.requirementFor(capability)
	id := DependencyID(len(b.graph.dependencies))
	b.graph.dependencies = append(b.graph.dependencies, Dependency{
		ID:          id,
		Mixin:       mixin,
		Requirement: reqID,
		Parent:      parent,
	})
	req := &b.graph.requirements[reqID]
	req.RequiredBy = append(req.RequiredBy, id)

	if !req.Aggregate {
		return id, nil
	}

	path = append(path, capability)
	for _, constituent := range typeinfo.Constituents(b.provider, capability) {
		child, err := b.attach(mixin, constituent, id, path)
		if err != nil {
			return 0, err
		}
		dep := &b.graph.dependencies[id]
		dep.Children = append(dep.Children, child)
	}
	return id, nil
}
