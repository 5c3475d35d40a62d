// Package diagram derives the renderable node/port/link graph of a mapping
// editor from a schema snapshot and the current visibility state.
//
// # Overview
//
// [Build] is a pure, synchronous function. It never patches a previous graph:
// every snapshot or visibility change produces a fresh [Graph], and building
// twice from identical inputs yields identical graphs.
//
// # Nodes
//
// [Node] is a closed set of variants:
//
//   - [InputNode]: one per top-level input, with an OUT port per schema field
//   - [OutputNode]: the output root, tagged Record, Array or Primitive, with an
//     IN port per field and per mapped array element
//   - [IntermediateNode]: a junction for a multi-input, complex or
//     function-call mapping
//   - [PlaceholderNode]: stands in for inputs that resolve to no schema root
//
// Every node allocates its ports in InitPorts before any node creates links in
// InitLinks, because links resolve ports owned by other nodes.
//
// # Ports
//
// Ports live in an [Arena]: a flat slice addressed by index, where each port
// records the index of its parent. Collapse state, link redirection and the
// disabled flags all propagate along that parent chain. A (path, direction)
// pair identifies exactly one port; its ID is "<path>.IN" or "<path>.OUT".
//
// Hidden ports (those below a collapsed ancestor) never carry links. A link
// aimed at one is redirected to the nearest visible ancestor.
//
// # Failures
//
// A failure while allocating one node is recovered, classified as Input,
// Output or Other, and recorded in [Graph.Errors]. The rest of the graph
// still builds. Mapping inputs that match no schema root render through a
// placeholder rather than failing the build.
package diagram
