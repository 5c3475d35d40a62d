// Package pipeline turns a built mapping graph into a rendered artifact.
//
// The stages are fixed: a [diagram.Graph] is rendered to DOT text, which
// graphviz lays out as SVG or PNG. JSON skips graphviz and emits the
// [graph.Graph] wire document. A [Runner] adds caching keyed by root,
// snapshot revision and view, so the CLI and the HTTP server share one
// code path.
package pipeline

import (
	"context"

	"github.com/matzehuels/datamapper/pkg/diagram"
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/graph"
	"github.com/matzehuels/datamapper/pkg/render/nodelink"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatDOT, FormatJSON}

// Options selects what to render.
type Options struct {
	Format   string
	Detailed bool
	// Refresh skips the cache read but still stores the new artifact.
	Refresh bool
}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats...)
}

// ValidateAndSetDefaults fills an empty format with SVG and validates the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	return ValidateFormat(o.Format)
}

// Render produces the artifact for g in the requested format.
func Render(ctx context.Context, g *diagram.Graph, revision string, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return graph.MarshalGraph(g, revision)
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed}))
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed}))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", opts.Format)
}
