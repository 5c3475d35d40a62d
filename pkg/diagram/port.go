package diagram

import (
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// NoParent marks a port without a parent.
const NoParent = -1

// Port is an addressable connection point bound to one schema field and one direction.
type Port struct {
	ID       string
	Path     string
	Dir      schema.Direction
	NodeID   string
	Name     string
	Kind     schema.Kind
	Optional bool
	Parent   int
	Depth    int

	Collapsed          bool
	Hidden             bool
	DescendantHasValue bool
	AncestorHasValue   bool
	Disabled           bool

	Links []string
}

// PortID returns the identifier of the port at (path, dir).
func PortID(path string, dir schema.Direction) string {
	return path + "." + string(dir)
}

type portKey struct {
	path string
	dir  schema.Direction
}

func keyOf(path string, dir schema.Direction) portKey {
	return portKey{path: fqn.Unquote(path), dir: dir}
}

// Arena stores ports by index. Parents are always allocated before their children.
type Arena struct {
	ports []Port
	index map[portKey]int
}

func newArena() *Arena {
	return &Arena{index: make(map[portKey]int)}
}

// Add allocates p and returns its index. Parent, Depth and Hidden are derived
// from p.Parent. Allocating a second port with the same (path, direction) fails.
func (a *Arena) Add(p Port) (int, error) {
	k := keyOf(p.Path, p.Dir)
	if _, dup := a.index[k]; dup {
		return NoParent, errors.New(errors.ErrCodeGraphBuild, "duplicate port %s", PortID(p.Path, p.Dir))
	}
	p.ID = PortID(p.Path, p.Dir)
	if p.Parent != NoParent {
		parent := &a.ports[p.Parent]
		p.Depth = parent.Depth + 1
		p.Hidden = parent.Hidden || parent.Collapsed
	}
	i := len(a.ports)
	a.ports = append(a.ports, p)
	a.index[k] = i
	return i, nil
}

// Lookup returns the index of the port at (path, dir). Paths are compared without quotes.
func (a *Arena) Lookup(path string, dir schema.Direction) (int, bool) {
	i, ok := a.index[keyOf(path, dir)]
	return i, ok
}

// Port returns the port at index i.
func (a *Arena) Port(i int) *Port { return &a.ports[i] }

// Len returns the number of allocated ports.
func (a *Arena) Len() int { return len(a.ports) }

// VisibleAncestor walks the parent chain from i past hidden ports and returns
// the first visible one.
func (a *Arena) VisibleAncestor(i int) int {
	for i != NoParent && a.ports[i].Hidden {
		i = a.ports[i].Parent
	}
	return i
}

// mark and rollback let a failed node discard the ports it allocated.
func (a *Arena) mark() int { return len(a.ports) }

func (a *Arena) rollback(m int) {
	for _, p := range a.ports[m:] {
		delete(a.index, keyOf(p.Path, p.Dir))
	}
	a.ports = a.ports[:m]
}
