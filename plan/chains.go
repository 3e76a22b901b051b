package plan

import (
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/override"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// Hierarchy layers the target lineage below the lineage of each mixin in
// mixinOrder.
func Hierarchy(p typeinfo.Provider, target declare.TypeID, mixinOrder []declare.TypeID) *override.Layers {
	types := typeinfo.Lineage(p, target)
	for _, m := range mixinOrder {
		types = append(types, typeinfo.Lineage(p, m)...)
	}
	return override.NewLayers(types...)
}

// BuildChains builds one override chain per overridable member of the target.
// Participants contribute the declarations found along their own lineage; a
// base type shared by several participants is attributed to the first.
func BuildChains(p typeinfo.Provider, target declare.TypeID, mixinOrder []declare.TypeID) (map[override.Key]*override.Chain, error) {
	h := Hierarchy(p, target, mixinOrder)
	participants := append([]declare.TypeID{target}, mixinOrder...)

	chains := make(map[override.Key]*override.Chain)
	for _, tm := range typeinfo.MethodSet(p, target) {
		if !tm.Overridable {
			continue
		}
		key := override.Key{Name: tm.Name, Signature: tm.Signature}

		var members []override.Member
		seen := make(map[declare.TypeID]bool)
		for _, owner := range participants {
			for _, dm := range typeinfo.LineageMethods(p, owner) {
				if dm.Key() != tm.Key() || seen[dm.DeclaringType] {
					continue
				}
				seen[dm.DeclaringType] = true
				members = append(members, memberOf(owner, dm))
			}
		}

		if len(members) == 0 {
			continue
		}
		chain, err := override.Build(h, members...)
		if err != nil {
			return nil, err
		}
		chains[key] = chain
	}
	return chains, nil
}

func memberOf(owner declare.TypeID, dm typeinfo.DeclaredMethod) override.Member {
	return override.Member{
		Owner:         owner,
		DeclaringType: dm.DeclaringType,
		Name:          dm.Name,
		Signature:     dm.Signature,
		Overridable:   dm.Overridable,
		Shadows:       dm.Shadows,
	}
}
