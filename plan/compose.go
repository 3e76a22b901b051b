package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lex00/wetwire-mixin-go/capgraph"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/override"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// Compose assembles the plan of decl from its capability graph, the resolved
// mixin order and the override chains of the target's overridable members.
//
// Every unresolved capability is reported, joined with errors.Join. A mixin
// member matching a target member that is not overridable fails with
// SealedMemberError. No plan is returned on error.
func Compose(
	decl *declare.Declaration,
	p typeinfo.Provider,
	g *capgraph.Graph,
	mixinOrder []declare.TypeID,
	chains map[override.Key]*override.Chain,
) (*Plan, error) {
	if len(mixinOrder) != len(decl.Mixins) {
		return nil, fmt.Errorf("mixin order has %d entries, declaration has %d mixins", len(mixinOrder), len(decl.Mixins))
	}

	slots := make([]declare.MixinSlot, len(mixinOrder))
	for i, m := range mixinOrder {
		slot, ok := decl.Slot(m)
		if !ok {
			return nil, fmt.Errorf("mixin %s in order is not declared", m)
		}
		slots[i] = slot
	}

	if err := checkSealed(p, decl.Target, mixinOrder); err != nil {
		return nil, err
	}

	bindings, err := bind(decl, p, g, mixinOrder)
	if err != nil {
		return nil, err
	}

	return &Plan{
		target:    decl.Target,
		identity:  decl.Identity(),
		order:     append([]declare.TypeID(nil), mixinOrder...),
		slots:     slots,
		pipelines: pipelines(decl.Target, mixinOrder, chains),
		bindings:  bindings,
	}, nil
}

func checkSealed(p typeinfo.Provider, target declare.TypeID, mixinOrder []declare.TypeID) error {
	sealed := make(map[typeinfo.MethodKey]bool)
	for _, m := range typeinfo.MethodSet(p, target) {
		if !m.Overridable {
			sealed[m.Key()] = true
		}
	}
	if len(sealed) == 0 {
		return nil
	}
	for _, mixin := range mixinOrder {
		for _, dm := range typeinfo.LineageMethods(p, mixin) {
			if sealed[dm.Key()] {
				return &SealedMemberError{Member: memberOf(mixin, dm)}
			}
		}
	}
	return nil
}

func pipelines(target declare.TypeID, mixinOrder []declare.TypeID, chains map[override.Key]*override.Chain) []Pipeline {
	keys := make([]override.Key, 0, len(chains))
	for k := range chains {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Signature < keys[j].Signature
	})

	participants := append([]declare.TypeID{target}, mixinOrder...)
	out := make([]Pipeline, 0, len(keys))
	for _, key := range keys {
		chain := chains[key]
		pl := Pipeline{Key: key, Chain: chain.Entries()}
		for _, owner := range participants {
			for _, m := range chain.Restrict(owner).NonOverridden() {
				pl.Links = append(pl.Links, Link{
					Key:           key,
					Owner:         owner,
					DeclaringType: m.DeclaringType,
					Depth:         len(pl.Links),
				})
			}
		}
		out = append(out, pl)
	}
	return out
}

type resolution struct {
	binding Binding
	ok      bool
}

func bind(decl *declare.Declaration, p typeinfo.Provider, g *capgraph.Graph, mixinOrder []declare.TypeID) ([]Binding, error) {
	resolved := make(map[capgraph.RequirementID]resolution)

	var resolve func(req capgraph.Requirement) resolution
	resolve = func(req capgraph.Requirement) resolution {
		if r, ok := resolved[req.ID]; ok {
			return r
		}
		requiring := g.RequiringMixins(req.ID)
		r := resolution{binding: Binding{Capability: req.Capability, RequiredBy: requiring}}
		// provisional entry, aggregates may refer back to themselves
		resolved[req.ID] = r

		// a sole requirer never satisfies its own requirement
		var sole declare.TypeID
		if len(requiring) == 1 {
			sole = requiring[0]
		}
		for _, m := range mixinOrder {
			if m != sole && typeinfo.Implements(p, m, req.Capability) {
				r.binding.Provider, r.binding.Kind, r.ok = m, ProviderMixin, true
				break
			}
		}
		if !r.ok && (typeinfo.Implements(p, decl.Target, req.Capability) || decl.IsComplete(req.Capability)) {
			r.binding.Provider, r.binding.Kind, r.ok = decl.Target, ProviderTarget, true
		}
		if !r.ok && req.Aggregate {
			r.ok = true
			for _, constituent := range typeinfo.Constituents(p, req.Capability) {
				child, found := g.Lookup(constituent)
				if !found || !resolve(child).ok {
					r.ok = false
				}
			}
			if r.ok {
				r.binding.Kind = ProviderAggregate
			}
		}
		resolved[req.ID] = r
		return r
	}

	var (
		out  []Binding
		errs []error
	)
	for _, req := range g.Requirements() {
		r := resolve(req)
		if !r.ok {
			errs = append(errs, &UnresolvedRequirementError{
				Capability: req.Capability,
				Target:     decl.Target,
				RequiredBy: r.binding.RequiredBy,
			})
			continue
		}
		out = append(out, r.binding)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
