package plan

import (
	"github.com/lex00/wetwire-mixin-go/capgraph"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/order"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// DependencyAnalyzer returns the order analyzer of a composition: mixin A
// depends on mixin B when B implements a capability A requires. A mixin only
// depends on itself when it requires its own type. Every B ordered before A
// this way is a binding candidate for the capability, since A shares the
// requirement and B is therefore never its sole requirer.
func DependencyAnalyzer(g *capgraph.Graph, p typeinfo.Provider) order.Analyzer[declare.TypeID] {
	required := make(map[declare.TypeID][]declare.TypeID)
	for _, m := range g.Mixins() {
		required[m] = g.RequiredCapabilities(m)
	}

	type pair struct{ a, b declare.TypeID }
	memo := make(map[pair]bool)
	dependsOn := func(a, b declare.TypeID) bool {
		key := pair{a, b}
		if v, ok := memo[key]; ok {
			return v
		}
		v := false
		for _, capability := range required[a] {
			if a == b {
				if capability == a {
					v = true
					break
				}
				continue
			}
			if typeinfo.Implements(p, b, capability) {
				v = true
				break
			}
		}
		memo[key] = v
		return v
	}

	return func(a, b declare.TypeID) order.Relation {
		switch {
		case dependsOn(a, b):
			return order.AOnB
		case dependsOn(b, a):
			return order.BOnA
		default:
			return order.None
		}
	}
}
