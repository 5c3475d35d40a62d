// Package graph provides the serialization format for built mapping graphs.
//
// This package defines the canonical wire format for datamapper graph data,
// used for JSON files, API responses and caching. It sits at the
// serialization boundary:
//
//   - [Graph], [Node], [Port], [Link]: serialization types (this package)
//   - pkg/diagram.Graph: the in-memory graph produced by the builder
//
// Use [FromDiagram] to convert. The conversion is one-way: a wire graph is a
// view for presentation collaborators, never an input to the engine.
//
// # Format
//
//	{
//	  "nodes": [
//	    {"id": "input:input", "kind": "input", "ports": [{"id": "input.OUT", ...}]},
//	    {"id": "output", "kind": "output", "shape": "record", "ports": [...]}
//	  ],
//	  "links": [{"id": "input.fullName.OUT->name.IN", "source": "input.fullName.OUT", "target": "name.IN"}]
//	}
//
// Nodes and links keep build order, which is deterministic, so two graphs
// built from identical inputs serialize to identical bytes.
package graph
