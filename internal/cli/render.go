package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamapper/pkg/editor"
	"github.com/matzehuels/datamapper/pkg/pipeline"
	"github.com/matzehuels/datamapper/pkg/visibility"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	root         string
	output       string   // output file path; "-" writes to stdout
	format       string   // svg, png, dot or json
	detailed     bool     // show kinds and add-element markers
	noCache      bool     // bypass the render cache
	refresh      bool     // skip the cache read
	collapse     []string // output paths to collapse
	expand       []string // input array paths to expand
	searchInput  string
	searchOutput string
}

// renderCommand creates the render command for drawing a root's mapping graph.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a root's mapping graph",
		Long: `Render a root's mapping graph.

Inputs are drawn on the left, the output on the right and mappings as links
between their fields. Multi-input and function-call mappings pass through an
expression box. Collapsed fields receive the links of their hidden children.

Rendered SVG and PNG output is cached per revision and view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				opts.format = c.Config.Render.Format
			}
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.Config.Render.Detailed
			}
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts)
		},
	}

	addRootFlag(cmd, &opts.root)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <root>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: svg, png, dot, json")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show field kinds and add-element markers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render and overwrite the cached artifact")
	cmd.Flags().StringSliceVar(&opts.collapse, "collapse", nil, "output paths to collapse (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.expand, "expand", nil, "input array paths to expand (comma-separated)")
	cmd.Flags().StringVar(&opts.searchInput, "search-input", "", "only show input fields matching this term")
	cmd.Flags().StringVar(&opts.searchOutput, "search-output", "", "only show output fields matching this term")

	return cmd
}

// viewState builds the visibility state requested on the command line.
func (o renderOpts) viewState() *visibility.State {
	vis := visibility.New()
	for _, p := range o.collapse {
		vis.Collapse(strings.TrimSpace(p))
	}
	for _, p := range o.expand {
		vis.Expand(strings.TrimSpace(p))
	}
	vis.SetInputSearch(o.searchInput)
	vis.SetOutputSearch(o.searchOutput)
	return vis
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	vis := opts.viewState()
	ed, err := editor.Open(ctx, s, opts.root, editor.Options{Logger: c.Logger, Visibility: vis})
	if err != nil {
		return err
	}

	ch := c.openCache(ctx, opts.noCache)
	defer ch.Close()
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	if c.Config.Cache.TTL > 0 {
		runner.TTL = c.Config.Cache.TTL
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+opts.root+"...")
	spinner.ui = c.ui()
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Input{
		Root:     opts.root,
		Revision: ed.Snapshot().Revision,
		ViewKey:  vis.Key(),
		Graph:    ed.Graph(),
	}, pipeline.Options{Format: opts.format, Detailed: opts.detailed, Refresh: opts.refresh})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}

	if opts.output == "-" {
		spinner.Stop()
		_, err := c.out.Write(res.Data)
		return err
	}
	path := opts.output
	if path == "" {
		path = opts.root + "." + opts.format
	}
	if err := writeArtifact(path, res.Data); err != nil {
		spinner.StopWithError("Write failed")
		return err
	}

	spinner.StopWithSuccess("Rendered " + opts.root)
	c.ui().stats(res.Stats, res.Cached)
	c.ui().nodeErrors(ed.Graph().Errors)
	c.ui().file(path)
	return nil
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
