package graph

import (
	"encoding/json"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// =============================================================================
// Graph - Mapping Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for built mapping graphs.
type Graph struct {
	Revision string  `json:"revision,omitempty" bson:"revision,omitempty"`
	Nodes    []Node  `json:"nodes" bson:"nodes"`
	Links    []Link  `json:"links" bson:"links"`
	Errors   []Error `json:"errors,omitempty" bson:"errors,omitempty"`
	Stats    Stats   `json:"stats" bson:"stats"`
}

// Node is one serialized node.
type Node struct {
	ID         string   `json:"id" bson:"id"`
	Kind       string   `json:"kind" bson:"kind"`
	Label      string   `json:"label" bson:"label"`
	Shape      string   `json:"shape,omitempty" bson:"shape,omitempty"`
	Ports      []Port   `json:"ports" bson:"ports"`
	AddElement []string `json:"addElement,omitempty" bson:"add_element,omitempty"`
}

// Port is one serialized port. Parent is the parent port id, empty for roots.
type Port struct {
	ID                 string   `json:"id" bson:"id"`
	Path               string   `json:"path" bson:"path"`
	Direction          string   `json:"direction" bson:"direction"`
	Name               string   `json:"name" bson:"name"`
	Kind               string   `json:"kind" bson:"kind"`
	Optional           bool     `json:"optional,omitempty" bson:"optional,omitempty"`
	Parent             string   `json:"parent,omitempty" bson:"parent,omitempty"`
	Depth              int      `json:"depth" bson:"depth"`
	Collapsed          bool     `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Hidden             bool     `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Disabled           bool     `json:"disabled,omitempty" bson:"disabled,omitempty"`
	DescendantHasValue bool     `json:"descendantHasValue,omitempty" bson:"descendant_has_value,omitempty"`
	AncestorHasValue   bool     `json:"ancestorHasValue,omitempty" bson:"ancestor_has_value,omitempty"`
	Links              []string `json:"links,omitempty" bson:"links,omitempty"`
}

// Link is one serialized link.
type Link struct {
	ID          string              `json:"id" bson:"id"`
	Source      string              `json:"source" bson:"source"`
	Target      string              `json:"target" bson:"target"`
	Expression  string              `json:"expression,omitempty" bson:"expression,omitempty"`
	Diagnostics []schema.Diagnostic `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
	Outputs     []string            `json:"outputs,omitempty" bson:"outputs,omitempty"`
	Redirected  bool                `json:"redirected,omitempty" bson:"redirected,omitempty"`
}

// Error is one serialized per-node build failure.
type Error struct {
	Node    string `json:"node" bson:"node"`
	Kind    string `json:"kind" bson:"kind"`
	Code    string `json:"code,omitempty" bson:"code,omitempty"`
	Message string `json:"message" bson:"message"`
}

// Stats mirrors diagram.Stats.
type Stats struct {
	Nodes        int `json:"nodes" bson:"nodes"`
	Ports        int `json:"ports" bson:"ports"`
	VisiblePorts int `json:"visiblePorts" bson:"visible_ports"`
	Links        int `json:"links" bson:"links"`
	Errors       int `json:"errors" bson:"errors"`
}

// =============================================================================
// Diagram → Graph Conversion
// =============================================================================

// FromDiagram converts a built graph to its serialization format.
// revision identifies the snapshot the graph was built from and may be empty.
func FromDiagram(g *diagram.Graph, revision string) Graph {
	out := Graph{
		Revision: revision,
		Nodes:    make([]Node, 0, len(g.Nodes)),
		Links:    make([]Link, 0, len(g.Links)),
	}

	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, nodeFromDiagram(g, n))
	}
	for _, l := range g.Links {
		out.Links = append(out.Links, Link{
			ID:          l.ID,
			Source:      l.Source,
			Target:      l.Target,
			Expression:  l.Label.Expression,
			Diagnostics: l.Label.Diagnostics,
			Outputs:     l.Outputs,
			Redirected:  l.Redirected,
		})
	}
	for _, e := range g.Errors {
		var msg string
		if e.Err != nil {
			msg = e.Err.Error()
		}
		out.Errors = append(out.Errors, Error{
			Node:    e.NodeID,
			Kind:    string(e.Kind),
			Code:    string(e.Code()),
			Message: msg,
		})
	}

	s := g.Stats()
	out.Stats = Stats{Nodes: s.Nodes, Ports: s.Ports, VisiblePorts: s.VisiblePorts, Links: s.Links, Errors: s.Errors}
	return out
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// nodeFromDiagram is the single point of conversion for diagram nodes.
func nodeFromDiagram(g *diagram.Graph, n diagram.Node) Node {
	node := Node{
		ID:    n.ID(),
		Kind:  string(n.Kind()),
		Label: n.Label(),
		Ports: make([]Port, 0, len(n.Ports())),
	}
	if o, ok := n.(*diagram.OutputNode); ok {
		node.Shape = string(o.Shape)
		node.AddElement = o.AddElement
	}
	for _, i := range n.Ports() {
		p := g.PortAt(i)
		wp := Port{
			ID:                 p.ID,
			Path:               p.Path,
			Direction:          string(p.Dir),
			Name:               p.Name,
			Kind:               string(p.Kind),
			Optional:           p.Optional,
			Depth:              p.Depth,
			Collapsed:          p.Collapsed,
			Hidden:             p.Hidden,
			Disabled:           p.Disabled,
			DescendantHasValue: p.DescendantHasValue,
			AncestorHasValue:   p.AncestorHasValue,
			Links:              p.Links,
		}
		if p.Parent != diagram.NoParent {
			wp.Parent = g.PortAt(p.Parent).ID
		}
		node.Ports = append(node.Ports, wp)
	}
	return node
}
