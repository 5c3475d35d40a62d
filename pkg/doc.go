// Package pkg provides the libraries behind the datamapper CLI and server.
//
// # Overview
//
// Datamapper edits field-level mappings from one or more input schemas to an
// output schema. The mapping tree is stored as a [schema.Snapshot]; every view
// of it is a graph of nodes, ports and links derived from the snapshot and a
// transient visibility state.
//
// # Architecture
//
//	Snapshot (import, store)
//	         ↓
//	    [diagram] package (build nodes, ports, links)   ← [visibility] (collapse, search)
//	         ↓
//	    [pipeline] package (DOT → graphviz SVG/PNG, JSON; cached)
//
//	Edit request
//	         ↓
//	    [editor] package (single writer per root)
//	         ↓
//	    [mutation] package (path-addressed changes)
//	         ↓
//	    [store] package (persist, new revision) → rebuild
//
// # Quick Start
//
//	s := store.NewMemoryStore()
//	_ = s.Save(ctx, "orders", snap)
//
//	ed, _ := editor.Open(ctx, s, "orders", editor.Options{})
//	_ = ed.CreateMapping(ctx, "order.id", "orderId")
//
//	svg, _ := pipeline.Render(ctx, ed.Graph(), ed.Snapshot().Revision,
//	    pipeline.Options{Format: pipeline.FormatSVG})
//
// # Packages
//
//   - [schema]: schema trees, mapping trees, snapshot JSON
//   - [fqn]: field paths, access expressions, mapping lookup
//   - [visibility]: collapsed fields and search terms
//   - [diagram]: the graph builder
//   - [mutation]: create, delete, update and add-element operations
//   - [store]: memory, file, redis and mongo snapshot stores
//   - [editor]: per-root session with the single-writer rule
//   - [graph]: wire document of a built graph
//   - [render/nodelink]: DOT output and graphviz rendering
//   - [pipeline]: format dispatch and cached rendering
//   - [cache]: artifact caches and keys
//   - [server]: HTTP API
//   - [config], [errors], [observability], [buildinfo]: ambient support
package pkg
