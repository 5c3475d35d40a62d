// Package nodelink renders mapping graphs as node-link diagrams.
//
// # Overview
//
// Input schemas sit on the left and the output schema on the right, each
// drawn as a table with one row per visible port. Links run from source
// rows to target rows; multi-input and function-call mappings pass through
// a small expression box in between.
//
// # Usage
//
// Convert a built graph to DOT, then render:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Styling
//
//   - Links whose mapping carries an error diagnostic are red.
//   - Links redirected to a collapsed ancestor are dashed.
//   - Disabled target rows are grey.
//   - Unresolved input roots are dashed red boxes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package nodelink
