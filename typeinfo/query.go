package typeinfo

import (
	"github.com/lex00/wetwire-mixin-go/declare"
)

// MethodKey identifies a member by name and signature.
type MethodKey struct {
	Name      string
	Signature string
}

// Key returns the method's key.
func (m Method) Key() MethodKey {
	return MethodKey{Name: m.Name, Signature: m.Signature}
}

// DeclaredMethod is a method together with the type that declares it.
type DeclaredMethod struct {
	Method
	DeclaringType declare.TypeID
}

// IsAggregator reports whether id is an aggregator capability: an interface
// with no methods of its own that is composed solely of other capabilities.
func IsAggregator(p Provider, id declare.TypeID) bool {
	d, ok := p.Describe(id)
	if !ok {
		return false
	}
	return d.Kind == KindInterface && len(d.Methods) == 0 && len(d.Embeds) > 0
}

// Constituents returns the capabilities an aggregator is composed of, with
// universal-base entries removed. It returns nil for non-aggregators.
func Constituents(p Provider, id declare.TypeID) []declare.TypeID {
	if !IsAggregator(p, id) {
		return nil
	}
	d, _ := p.Describe(id)
	out := make([]declare.TypeID, 0, len(d.Embeds))
	for _, e := range d.Embeds {
		if declare.IsUniversal(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// MethodSet returns the methods of id including those promoted from embedded
// types. A method declared closer to id hides a promoted method with the same
// name. Unknown types contribute nothing; embedding cycles are ignored.
func MethodSet(p Provider, id declare.TypeID) []DeclaredMethod {
	var out []DeclaredMethod
	seenName := make(map[string]bool)
	visited := make(map[declare.TypeID]bool)

	// breadth first so shallower declarations win
	queue := []declare.TypeID{id}
	for len(queue) > 0 {
		var next []declare.TypeID
		level := make(map[string]bool)
		for _, cur := range queue {
			if visited[cur] || declare.IsUniversal(cur) {
				continue
			}
			visited[cur] = true
			d, ok := p.Describe(cur)
			if !ok {
				continue
			}
			for _, m := range d.Methods {
				if seenName[m.Name] || level[m.Name] {
					continue
				}
				level[m.Name] = true
				out = append(out, DeclaredMethod{Method: m, DeclaringType: cur})
			}
			next = append(next, d.Embeds...)
		}
		for name := range level {
			seenName[name] = true
		}
		queue = next
	}
	return out
}

// Embeds reports whether typ embeds capability, directly or transitively.
func Embeds(p Provider, typ, capability declare.TypeID) bool {
	visited := make(map[declare.TypeID]bool)
	var walk func(cur declare.TypeID) bool
	walk = func(cur declare.TypeID) bool {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		d, ok := p.Describe(cur)
		if !ok {
			return false
		}
		for _, e := range d.Embeds {
			if e == capability || walk(e) {
				return true
			}
		}
		return false
	}
	return walk(typ)
}

// Implements reports whether typ satisfies capability, either nominally
// (same type or embedding it) or structurally (its method set covers every
// method of the capability). An unknown capability is only implemented
// nominally.
func Implements(p Provider, typ, capability declare.TypeID) bool {
	if declare.IsUniversal(capability) || typ == capability {
		return true
	}
	if Embeds(p, typ, capability) {
		return true
	}
	if _, ok := p.Describe(capability); !ok {
		return false
	}
	if _, ok := p.Describe(typ); !ok {
		return false
	}

	required := MethodSet(p, capability)
	if len(required) == 0 {
		// empty non-universal interfaces are only satisfied nominally
		return false
	}
	have := make(map[MethodKey]bool)
	for _, m := range MethodSet(p, typ) {
		have[m.Key()] = true
	}
	for _, m := range required {
		if !have[m.Key()] {
			return false
		}
	}
	return true
}

// Lineage returns id preceded by the struct types it embeds, root first.
// Interfaces have no lineage beyond themselves. For several embedded bases the
// lineage follows declaration order, depth first.
func Lineage(p Provider, id declare.TypeID) []declare.TypeID {
	var out []declare.TypeID
	visited := make(map[declare.TypeID]bool)
	var walk func(cur declare.TypeID)
	walk = func(cur declare.TypeID) {
		if visited[cur] || declare.IsUniversal(cur) {
			return
		}
		visited[cur] = true
		if d, ok := p.Describe(cur); ok && d.Kind == KindStruct {
			for _, e := range d.Embeds {
				if base, ok := p.Describe(e); ok && base.Kind == KindStruct {
					walk(e)
				}
			}
		}
		out = append(out, cur)
	}
	walk(id)
	return out
}

// LineageMethods returns every method declared along the lineage of id, in
// lineage order (root first). Unlike MethodSet, hidden declarations are kept.
func LineageMethods(p Provider, id declare.TypeID) []DeclaredMethod {
	var out []DeclaredMethod
	for _, t := range Lineage(p, id) {
		d, ok := p.Describe(t)
		if !ok {
			continue
		}
		for _, m := range d.Methods {
			out = append(out, DeclaredMethod{Method: m, DeclaringType: t})
		}
	}
	return out
}
