// Package cli implements the datamapper command-line interface.
//
// Commands operate on mapping roots held in the configured snapshot store:
//   - import, export, roots: move snapshots in and out of the store
//   - map, unmap, set-expr, add-element, reset: edit mappings
//   - render: draw the mapping graph as SVG, PNG, DOT or JSON
//   - browse: interactive terminal view of a root
//   - serve: HTTP API over the same store
//   - cache: manage the render cache
//
// All commands accept --verbose (-v) for debug logging and --config to
// select a TOML configuration file.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/datamapper/pkg/buildinfo"
	"github.com/matzehuels/datamapper/pkg/cache"
	"github.com/matzehuels/datamapper/pkg/config"
	"github.com/matzehuels/datamapper/pkg/editor"
	"github.com/matzehuels/datamapper/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "datamapper"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
	out        io.Writer
	status     io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
		status: os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, which defaults to stdout.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// SetStatusOutput redirects status lines, which default to stdout.
func (c *CLI) SetStatusOutput(w io.Writer) {
	c.status = w
}

func (c *CLI) ui() printer {
	return printer{w: c.status}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Datamapper edits field-to-field mappings between schemas",
		Long:         `Datamapper renders and edits field-level mappings between input schemas and an output schema, keeping array elements and nested fields consistent.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			installHooks(c.Logger)

			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/datamapper/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.rootsCommand())
	root.AddCommand(c.mapCommand())
	root.AddCommand(c.unmapCommand())
	root.AddCommand(c.setExprCommand())
	root.AddCommand(c.addElementCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backends
// =============================================================================

// openStore opens the configured snapshot store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	opts := c.Config.StoreOptions()
	c.Logger.Debug("opening store", "backend", opts.Backend)
	return store.Open(ctx, opts)
}

// openEditor opens the store and a session on root. The returned close
// function releases the store.
func (c *CLI) openEditor(ctx context.Context, root string) (*editor.Editor, func() error, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	ed, err := editor.Open(ctx, s, root, editor.Options{Logger: c.Logger})
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return ed, s.Close, nil
}

// openCache opens the configured render cache, or a null cache when disabled.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	ch, err := c.Config.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// addRootFlag registers the --root flag shared by commands that act on one root.
func addRootFlag(cmd *cobra.Command, root *string) {
	cmd.Flags().StringVarP(root, "root", "r", "", "mapping root name")
	cmd.MarkFlagRequired("root")
}
