package diagram

import (
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/visibility"
)

// NodeKind names a node variant.
type NodeKind string

// Node kinds.
const (
	KindInput        NodeKind = "input"
	KindOutput       NodeKind = "output"
	KindIntermediate NodeKind = "intermediate"
	KindPlaceholder  NodeKind = "placeholder"
)

// Shape tags an OutputNode by the kind of its root type.
type Shape string

// Output shapes.
const (
	ShapeRecord    Shape = "record"
	ShapeArray     Shape = "array"
	ShapePrimitive Shape = "primitive"
)

// Node is one of *InputNode, *OutputNode, *IntermediateNode or *PlaceholderNode.
type Node interface {
	ID() string
	Kind() NodeKind
	Label() string
	// InitPorts allocates the node's ports. It runs for every node before any InitLinks.
	InitPorts(a *Arena) error
	// InitLinks creates the links the node owns.
	InitLinks(l *linker) error
	// Port returns the index of the node's port at (path, dir).
	Port(path string, dir schema.Direction) (int, bool)
	// Ports returns the indices of the node's ports in allocation order.
	Ports() []int

	node()
}

// base holds the port bookkeeping shared by every variant.
type base struct {
	id    string
	ports []int
	arena *Arena
}

func (b *base) ID() string    { return b.id }
func (b *base) Ports() []int  { return b.ports }
func (b *base) node()         {}

func (b *base) Port(path string, dir schema.Direction) (int, bool) {
	if b.arena == nil {
		return NoParent, false
	}
	i, ok := b.arena.Lookup(path, dir)
	if !ok || b.arena.Port(i).NodeID != b.id {
		return NoParent, false
	}
	return i, true
}

func (b *base) add(a *Arena, p Port) (int, error) {
	p.NodeID = b.id
	i, err := a.Add(p)
	if err != nil {
		return NoParent, err
	}
	b.arena = a
	b.ports = append(b.ports, i)
	return i, nil
}

// =============================================================================
// InputNode
// =============================================================================

// InputNode renders one top-level input with an OUT port per schema field.
type InputNode struct {
	base
	Type *schema.IOType
	vis  *visibility.State
}

func newInputNode(t *schema.IOType, vis *visibility.State) *InputNode {
	return &InputNode{base: base{id: "input:" + t.Name()}, Type: t, vis: vis}
}

func (n *InputNode) Kind() NodeKind { return KindInput }
func (n *InputNode) Label() string  { return n.Type.Name() }

// Root returns the index of the header port.
func (n *InputNode) Root() int {
	if len(n.ports) == 0 {
		return NoParent
	}
	return n.ports[0]
}

func (n *InputNode) InitPorts(a *Arena) error {
	return n.addField(a, n.Type, n.Type.Name(), NoParent)
}

// addField allocates t and its record fields. Source arrays are leaves.
func (n *InputNode) addField(a *Arena, t *schema.IOType, path string, parent int) error {
	i, err := n.add(a, Port{
		Path:      path,
		Dir:       schema.Out,
		Name:      t.Name(),
		Kind:      t.Kind,
		Optional:  t.Optional,
		Parent:    parent,
		Collapsed: collapsible(t.Kind) && n.vis.IsPortCollapsed(path, schema.Out, t.Kind),
	})
	if err != nil {
		return err
	}
	if t.Kind != schema.KindRecord {
		return nil
	}
	for _, f := range t.Fields {
		if err := n.addField(a, f, fqn.ChildPath(path, f.Name()), i); err != nil {
			return err
		}
	}
	return nil
}

func (n *InputNode) InitLinks(*linker) error { return nil }

// =============================================================================
// OutputNode
// =============================================================================

// OutputNode renders the output root with an IN port per field and per mapped
// array element.
type OutputNode struct {
	base
	Type  *schema.IOType
	Shape Shape
	// AddElement lists the array paths that offer an "add element" affordance.
	AddElement []string

	mappings []schema.Mapping
	vis      *visibility.State
}

func newOutputNode(t *schema.IOType, mappings []schema.Mapping, vis *visibility.State) *OutputNode {
	shape := ShapePrimitive
	switch t.Kind {
	case schema.KindRecord:
		shape = ShapeRecord
	case schema.KindArray:
		shape = ShapeArray
	}
	return &OutputNode{base: base{id: "output"}, Type: t, Shape: shape, mappings: mappings, vis: vis}
}

func (n *OutputNode) Kind() NodeKind { return KindOutput }
func (n *OutputNode) Label() string  { return n.Type.Name() }

func (n *OutputNode) InitPorts(a *Arena) error {
	root := fqn.OutputRoot(n.Type)
	i, err := n.add(a, Port{
		Path:      root,
		Dir:       schema.In,
		Name:      n.Type.Name(),
		Kind:      n.Type.Kind,
		Optional:  n.Type.Optional,
		Parent:    NoParent,
		Collapsed: collapsible(n.Type.Kind) && n.vis.IsPortCollapsed(root, schema.In, n.Type.Kind),
	})
	if err != nil {
		return err
	}
	// Children of the root are addressed relative to it.
	return n.addChildren(a, n.Type, root, "", i, n.mappings)
}

// addField allocates the port for t at path and its children.
func (n *OutputNode) addField(a *Arena, t *schema.IOType, path string, parent int, scope []schema.Mapping) error {
	i, err := n.add(a, Port{
		Path:      path,
		Dir:       schema.In,
		Name:      fqn.Last(path),
		Kind:      t.Kind,
		Optional:  t.Optional,
		Parent:    parent,
		Collapsed: collapsible(t.Kind) && n.vis.IsPortCollapsed(path, schema.In, t.Kind),
	})
	if err != nil {
		return err
	}
	return n.addChildren(a, t, path, path, i, scope)
}

// addChildren allocates record fields or array elements below the port at index i.
// mappingPath is the path used to find the array mapping; prefix is the path
// children are appended to.
func (n *OutputNode) addChildren(a *Arena, t *schema.IOType, mappingPath, prefix string, i int, scope []schema.Mapping) error {
	switch t.Kind {
	case schema.KindRecord:
		for _, f := range t.Fields {
			if err := n.addField(a, f, fqn.ChildPath(prefix, f.Name()), i, scope); err != nil {
				return err
			}
		}
	case schema.KindArray:
		if !a.Port(i).Hidden {
			n.AddElement = append(n.AddElement, a.Port(i).Path)
		}
		m, ok := fqn.Find(scope, mappingPath)
		if !ok || t.Member == nil {
			return nil
		}
		for idx, e := range m.Elements {
			if err := n.addField(a, t.Member, fqn.ChildPath(prefix, "", idx), i, e.Mappings); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *OutputNode) InitLinks(l *linker) error {
	for _, m := range l.direct {
		l.linkDirect(m)
	}
	return nil
}

// =============================================================================
// IntermediateNode
// =============================================================================

// IntermediateNode is a junction for a mapping with several inputs or a
// complex or function-call expression. Sources fan in to its IN port and its
// OUT port feeds the target.
type IntermediateNode struct {
	base
	Mapping schema.Mapping
}

func newIntermediateNode(m schema.Mapping) *IntermediateNode {
	return &IntermediateNode{base: base{id: "expr:" + fqn.Unquote(m.Output)}, Mapping: m}
}

func (n *IntermediateNode) Kind() NodeKind { return KindIntermediate }

func (n *IntermediateNode) Label() string {
	const max = 48
	if len(n.Mapping.Expression) > max {
		return n.Mapping.Expression[:max-1] + "…"
	}
	return n.Mapping.Expression
}

// In returns the index of the junction IN port.
func (n *IntermediateNode) In() int { return n.ports[0] }

// Out returns the index of the junction OUT port.
func (n *IntermediateNode) Out() int { return n.ports[1] }

func (n *IntermediateNode) InitPorts(a *Arena) error {
	for _, dir := range []schema.Direction{schema.In, schema.Out} {
		if _, err := n.add(a, Port{Path: n.id, Dir: dir, Name: string(dir), Kind: schema.KindUnknown, Parent: NoParent}); err != nil {
			return err
		}
	}
	return nil
}

func (n *IntermediateNode) InitLinks(l *linker) error {
	for _, in := range n.Mapping.Inputs {
		if src, ok := l.source(in); ok {
			l.connect(src, endpoint{port: n.In()}, Label{Expression: fqn.AccessExpr(in)}, "")
		}
	}
	if dst, ok := l.target(n.Mapping.Output); ok {
		l.connect(endpoint{port: n.Out()}, dst, Label{Expression: n.Mapping.Expression, Diagnostics: n.Mapping.Diagnostics}, n.Mapping.Output)
	}
	return nil
}

// =============================================================================
// PlaceholderNode
// =============================================================================

// PlaceholderNode stands in for an input root that no schema provides. Each
// unresolved input path gets its own OUT port so links stay distinguishable.
type PlaceholderNode struct {
	base
	Root  string
	Paths []string
}

func newPlaceholderNode(root string) *PlaceholderNode {
	return &PlaceholderNode{base: base{id: "placeholder:" + root}, Root: root}
}

func (n *PlaceholderNode) Kind() NodeKind { return KindPlaceholder }
func (n *PlaceholderNode) Label() string  { return "no match: " + n.Root }

func (n *PlaceholderNode) InitPorts(a *Arena) error {
	for _, p := range n.Paths {
		if _, err := n.add(a, Port{Path: p, Dir: schema.Out, Name: p, Kind: schema.KindUnknown, Parent: NoParent}); err != nil {
			return err
		}
	}
	return nil
}

func (n *PlaceholderNode) InitLinks(*linker) error { return nil }

func collapsible(k schema.Kind) bool {
	return k == schema.KindRecord || k == schema.KindArray
}
