package diagram

import (
	"slices"

	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Label is the text carried by a link.
type Label struct {
	Expression  string
	Diagnostics []schema.Diagnostic
}

// Link connects an OUT port to an IN port.
type Link struct {
	ID     string
	Source string
	Target string
	Label  Label
	// Outputs lists the mapping outputs rendered through this link. Mappings
	// that redirect onto the same port pair share one link.
	Outputs []string
	// Redirected is set when either end was moved to a visible ancestor.
	Redirected bool
}

// endpoint is a resolved port index and whether it was redirected.
type endpoint struct {
	port       int
	redirected bool
}

// linker resolves mapping paths to ports and collects links during the InitLinks phase.
type linker struct {
	arena        *Arena
	inputs       map[string]*InputNode
	placeholders map[string]*PlaceholderNode
	unresolved   map[string]bool
	direct       []schema.Mapping

	inputFiltered  bool
	outputFiltered bool
	outputFailed   bool

	links  []Link
	byPair map[string]int
	errs   []NodeError
}

func newLinker(a *Arena) *linker {
	return &linker{
		arena:        a,
		inputs:       make(map[string]*InputNode),
		placeholders: make(map[string]*PlaceholderNode),
		unresolved:   make(map[string]bool),
		byPair:       make(map[string]int),
	}
}

func (l *linker) report(nodeID string, kind ErrorKind, err error) {
	l.errs = append(l.errs, NodeError{NodeID: nodeID, Kind: kind, Err: err})
}

// source resolves a rooted input path to a visible OUT port.
func (l *linker) source(input string) (endpoint, bool) {
	if l.unresolved[fqn.Unquote(input)] {
		i, ok := l.arena.Lookup(input, schema.Out)
		return endpoint{port: i}, ok
	}
	if _, ok := l.inputs[fqn.Root(input)]; !ok {
		// Filtered out by search, or its node failed to build.
		return endpoint{}, false
	}
	for k, p := range fqn.Prefixes(input) {
		if i, ok := l.arena.Lookup(p, schema.Out); ok {
			v := l.arena.VisibleAncestor(i)
			return endpoint{port: v, redirected: v != i || k > 0}, true
		}
	}
	return endpoint{}, false
}

// target resolves an output path to a visible IN port.
func (l *linker) target(output string) (endpoint, bool) {
	i, ok := l.arena.Lookup(output, schema.In)
	if !ok {
		if !l.outputFiltered && !l.outputFailed {
			l.report("output", ErrorOutput, errors.New(errors.ErrCodeSchemaResolution, "mapping output %q has no matching field", output))
		}
		return endpoint{}, false
	}
	v := l.arena.VisibleAncestor(i)
	return endpoint{port: v, redirected: v != i}, true
}

func (l *linker) linkDirect(m schema.Mapping) {
	src, ok := l.source(m.Inputs[0])
	if !ok {
		return
	}
	dst, ok := l.target(m.Output)
	if !ok {
		return
	}
	l.connect(src, dst, Label{Expression: m.Expression, Diagnostics: m.Diagnostics}, m.Output)
}

// connect creates the link src -> dst, or folds output into an existing link
// between the same ports.
func (l *linker) connect(src, dst endpoint, label Label, output string) {
	s, d := l.arena.Port(src.port), l.arena.Port(dst.port)
	id := s.ID + "->" + d.ID
	if k, ok := l.byPair[id]; ok {
		lk := &l.links[k]
		if output != "" {
			lk.Outputs = append(lk.Outputs, output)
		}
		lk.Label.Diagnostics = append(lk.Label.Diagnostics, label.Diagnostics...)
		lk.Redirected = lk.Redirected || src.redirected || dst.redirected
		return
	}
	// The label owns its diagnostics: merges append to them, and the
	// snapshot's slices are shared with every other build.
	label.Diagnostics = slices.Clone(label.Diagnostics)
	lk := Link{
		ID:         id,
		Source:     s.ID,
		Target:     d.ID,
		Label:      label,
		Redirected: src.redirected || dst.redirected,
	}
	if output != "" {
		lk.Outputs = []string{output}
	}
	l.byPair[id] = len(l.links)
	l.links = append(l.links, lk)
	s.Links = append(s.Links, id)
	d.Links = append(d.Links, id)
}
