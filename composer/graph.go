package composer

import (
	"fmt"
	"strings"

	"github.com/lex00/wetwire-mixin-go/capgraph"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/plan"
)

type grapher struct {
	c *Composer
}

// Graph renders the capability graph of the document at path. Mixins point
// at the capabilities they require, aggregators at their constituents, and
// capabilities at the mixin or target bound to them. Bindings are left out
// when the plan cannot be built.
func (g *grapher) Graph(ctx *domain.Context, path string, opts domain.GraphOpts) (*domain.Result, error) {
	p, failed, err := g.c.load(ctx, path, "")
	if err != nil || failed != nil {
		return failed, err
	}
	cg, err := capgraph.Build(&p.doc.Declaration, p.types)
	if err != nil {
		return planFailure(p.doc.Path, err), nil
	}

	var bindings []plan.Binding
	mixins := cg.Mixins()
	if pl, err := g.c.plan(ctx, p); err != nil {
		p.logger.Debug().Err(err).Msg("graph without bindings")
	} else {
		bindings = pl.Bindings()
		mixins = pl.Order()
	}

	gr := newCapabilityGraph(cg, mixins, bindings)
	switch strings.ToLower(opts.Format) {
	case "", "dot":
		return domain.NewResultWithData("Graph generated", gr.dot()), nil
	case "mermaid":
		return domain.NewResultWithData("Graph generated", gr.mermaid()), nil
	default:
		return nil, fmt.Errorf("unsupported graph format %q (expected dot or mermaid)", opts.Format)
	}
}

type edgeKind int

const (
	edgeRequires edgeKind = iota
	edgeContains
	edgeBound
)

type edge struct {
	from, to declare.TypeID
	kind     edgeKind
}

// capabilityGraph is the renderable form of a capability graph.
type capabilityGraph struct {
	target       declare.TypeID
	mixins       []declare.TypeID
	capabilities []declare.TypeID
	aggregates   map[declare.TypeID]bool
	edges        []edge
}

func newCapabilityGraph(cg *capgraph.Graph, mixins []declare.TypeID, bindings []plan.Binding) *capabilityGraph {
	gr := &capabilityGraph{
		target:     cg.Target(),
		mixins:     mixins,
		aggregates: make(map[declare.TypeID]bool),
	}
	for _, req := range cg.Requirements() {
		gr.capabilities = append(gr.capabilities, req.Capability)
		if req.Aggregate {
			gr.aggregates[req.Capability] = true
		}
	}

	seen := make(map[edge]bool)
	add := func(e edge) {
		if !seen[e] {
			seen[e] = true
			gr.edges = append(gr.edges, e)
		}
	}
	capabilityOf := func(d capgraph.Dependency) declare.TypeID {
		req, _ := cg.Requirement(d.Requirement)
		return req.Capability
	}
	for _, mixin := range mixins {
		for _, dep := range cg.RootsOf(mixin) {
			add(edge{from: mixin, to: capabilityOf(dep), kind: edgeRequires})
		}
	}
	for _, dep := range cg.Dependencies() {
		for _, childID := range dep.Children {
			child, _ := cg.Dependency(childID)
			add(edge{from: capabilityOf(dep), to: capabilityOf(child), kind: edgeContains})
		}
	}
	for _, b := range bindings {
		if b.Provider != "" {
			add(edge{from: b.Capability, to: b.Provider, kind: edgeBound})
		}
	}
	return gr
}

func (gr *capabilityGraph) dot() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", string(gr.target))
	sb.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&sb, "  %q [shape=box,style=bold];\n", string(gr.target))
	for _, m := range gr.mixins {
		fmt.Fprintf(&sb, "  %q [shape=box];\n", string(m))
	}
	for _, c := range gr.capabilities {
		shape := "ellipse"
		if gr.aggregates[c] {
			shape = "doubleoctagon"
		}
		fmt.Fprintf(&sb, "  %q [shape=%s];\n", string(c), shape)
	}
	for _, e := range gr.edges {
		attrs := ""
		switch e.kind {
		case edgeContains:
			attrs = " [style=dashed]"
		case edgeBound:
			attrs = " [style=dotted,label=\"bound\"]"
		}
		fmt.Fprintf(&sb, "  %q -> %q%s;\n", string(e.from), string(e.to), attrs)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (gr *capabilityGraph) mermaid() string {
	ids := make(map[declare.TypeID]string)
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	node := func(id declare.TypeID, left, right string) {
		if _, ok := ids[id]; ok {
			return
		}
		ids[id] = fmt.Sprintf("n%d", len(ids))
		fmt.Fprintf(&sb, "  %s%s%q%s\n", ids[id], left, string(id), right)
	}
	node(gr.target, "[[", "]]")
	for _, m := range gr.mixins {
		node(m, "[", "]")
	}
	for _, c := range gr.capabilities {
		if gr.aggregates[c] {
			node(c, "{{", "}}")
		} else {
			node(c, "(", ")")
		}
	}
	for _, e := range gr.edges {
		node(e.to, "(", ")")
		arrow := "-->"
		switch e.kind {
		case edgeContains:
			arrow = "-.->"
		case edgeBound:
			arrow = "-. bound .->"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", ids[e.from], arrow, ids[e.to])
	}
	return sb.String()
}
