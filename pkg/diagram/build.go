package diagram

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/visibility"
)

// Build derives the graph for snap under vis. A nil vis means the default
// visibility state. Build never fails as a whole: per-node failures are
// recorded in Graph.Errors and the remaining nodes still build.
func Build(snap *schema.Snapshot, vis *visibility.State) *Graph {
	if vis == nil {
		vis = visibility.New()
	}
	a := newArena()
	g := &Graph{arena: a}
	if snap == nil || snap.Output == nil {
		g.Errors = append(g.Errors, NodeError{
			NodeID: "output",
			Kind:   ErrorOutput,
			Err:    errors.New(errors.ErrCodeInvalidSnapshot, "snapshot has no output type"),
		})
		return g
	}

	inputs := visibility.FilterInputs(snap.Inputs, vis.InputSearch())
	output := visibility.FilterOutput(snap.Output, vis.OutputSearch())
	mappings := visibility.FilterMappings(snap.Mappings, vis.OutputSearch())

	l := newLinker(a)
	l.inputFiltered = vis.InputSearch() != ""
	l.outputFiltered = vis.OutputSearch() != ""

	var nodes []Node
	for _, in := range inputs {
		if in == nil {
			continue
		}
		n := newInputNode(in, vis)
		nodes = append(nodes, n)
		l.inputs[in.Name()] = n
	}
	nodes = append(nodes, newOutputNode(output, mappings, vis))

	p := &planner{snap: snap, linker: l, seen: make(map[string]bool)}
	p.plan(mappings)
	nodes = append(nodes, p.intermediates...)
	for _, root := range slices.Sorted(maps.Keys(l.placeholders)) {
		ph := l.placeholders[root]
		nodes = append(nodes, ph)
		l.report(ph.ID(), ErrorInput, errors.New(errors.ErrCodeSchemaResolution,
			"no input matches %s", strings.Join(ph.Paths, ", ")))
	}

	// Phase one: every node allocates its ports.
	live := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		m := a.mark()
		if err := safely(func() error { return n.InitPorts(a) }); err != nil {
			a.rollback(m)
			l.report(n.ID(), classify(n), err)
			switch n := n.(type) {
			case *InputNode:
				delete(l.inputs, n.Type.Name())
			case *OutputNode:
				l.outputFailed = true
			}
			continue
		}
		live = append(live, n)
	}

	// Phase two: links, which may resolve ports of any node.
	for _, n := range live {
		if err := safely(func() error { return n.InitLinks(l) }); err != nil {
			l.report(n.ID(), classify(n), err)
		}
	}

	propagate(a, p.values)

	g.Nodes = live
	g.Links = l.links
	g.Errors = append(g.Errors, l.errs...)
	return g
}

// planner walks the mapping tree once before any port exists, deciding which
// mappings link directly, which need an intermediate node and which inputs
// need a placeholder.
type planner struct {
	snap          *schema.Snapshot
	linker        *linker
	seen          map[string]bool
	values        []string
	intermediates []Node
}

func (p *planner) plan(ms []schema.Mapping) {
	l := p.linker
	for _, m := range ms {
		key := fqn.Unquote(m.Output)
		if p.seen[key] {
			continue // first match wins
		}
		p.seen[key] = true

		if hasValue(m) {
			p.values = append(p.values, m.Output)
		}
		for _, in := range m.Inputs {
			p.checkInput(in)
		}

		switch {
		case m.IsDirect():
			l.direct = append(l.direct, m)
		case len(m.Inputs) > 0 || m.IsComplex || m.IsFunctionCall:
			p.intermediates = append(p.intermediates, newIntermediateNode(m))
		}
		for _, e := range m.Elements {
			p.plan(e.Mappings)
		}
	}
}

// checkInput registers a placeholder port for inputs the unfiltered schema cannot resolve.
func (p *planner) checkInput(in string) {
	if _, ok := fqn.LookupInput(p.snap.Inputs, in); ok {
		return
	}
	l := p.linker
	key := fqn.Unquote(in)
	if l.unresolved[key] {
		return
	}
	l.unresolved[key] = true
	root := fqn.Root(in)
	if root == "" {
		root = in
	}
	ph, ok := l.placeholders[root]
	if !ok {
		ph = newPlaceholderNode(root)
		l.placeholders[root] = ph
	}
	ph.Paths = append(ph.Paths, in)
}

// hasValue reports whether m assigns a value to its output port. Container
// mappings whose expression is an empty literal leave the port unvalued so
// their elements stay editable.
func hasValue(m schema.Mapping) bool {
	if len(m.Inputs) > 0 {
		return true
	}
	switch strings.TrimSpace(m.Expression) {
	case "", schema.DefaultValue(schema.KindArray), schema.DefaultValue(schema.KindRecord):
		return false
	}
	return true
}

// propagate recomputes the value flags along the parent chain of every port.
func propagate(a *Arena, values []string) {
	valued := make([]bool, a.Len())
	for _, out := range values {
		if i, ok := a.Lookup(out, schema.In); ok {
			valued[i] = true
		}
	}
	for i := range a.ports {
		if !valued[i] {
			continue
		}
		for p := a.ports[i].Parent; p != NoParent; p = a.ports[p].Parent {
			a.ports[p].DescendantHasValue = true
		}
	}
	for i := range a.ports {
		port := &a.ports[i]
		if port.Parent != NoParent {
			parent := &a.ports[port.Parent]
			port.AncestorHasValue = valued[port.Parent] || parent.AncestorHasValue
		}
		if port.Dir == schema.In && port.NodeID == "output" {
			port.Disabled = port.AncestorHasValue || port.DescendantHasValue
		}
	}
}
