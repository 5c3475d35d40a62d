// Package render groups the renderers for built mapping graphs.
//
// The [nodelink] subpackage draws a [diagram.Graph] as a left-to-right
// node-link diagram: input records on the left, the output record on the
// right, expression boxes in between. It emits DOT text and lays it out with
// an embedded graphviz, so no external binaries are needed.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Callers that want caching go through the pipeline package instead.
package render
