package diagram

import (
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Graph is the complete node/port/link set derived by [Build].
type Graph struct {
	Nodes  []Node
	Links  []Link
	Errors []NodeError

	arena *Arena
}

// Stats summarizes a graph.
type Stats struct {
	Nodes        int
	Ports        int
	VisiblePorts int
	Links        int
	Errors       int
}

// Ports returns every port in allocation order.
func (g *Graph) Ports() []Port {
	if g.arena == nil {
		return nil
	}
	return g.arena.ports
}

// Port returns the port at (path, dir).
func (g *Graph) Port(path string, dir schema.Direction) (*Port, bool) {
	if g.arena == nil {
		return nil, false
	}
	i, ok := g.arena.Lookup(path, dir)
	if !ok {
		return nil, false
	}
	return g.arena.Port(i), true
}

// PortAt returns the port at arena index i.
func (g *Graph) PortAt(i int) *Port { return g.arena.Port(i) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID() == id {
			return n, true
		}
	}
	return nil, false
}

// Output returns the output node, or nil when it failed to build.
func (g *Graph) Output() *OutputNode {
	for _, n := range g.Nodes {
		if o, ok := n.(*OutputNode); ok {
			return o
		}
	}
	return nil
}

// LinksTo returns the links whose target is the given port id.
func (g *Graph) LinksTo(portID string) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.Target == portID {
			out = append(out, l)
		}
	}
	return out
}

// LinksFrom returns the links whose source is the given port id.
func (g *Graph) LinksFrom(portID string) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.Source == portID {
			out = append(out, l)
		}
	}
	return out
}

// Stats returns node, port and link counts.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Links: len(g.Links), Errors: len(g.Errors)}
	for _, p := range g.Ports() {
		s.Ports++
		if !p.Hidden {
			s.VisiblePorts++
		}
	}
	return s
}
