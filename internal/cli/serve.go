package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamapper/pkg/server"
	"github.com/matzehuels/datamapper/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		retries int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mapping API over HTTP",
		Long: `Serve the mapping API over HTTP.

Routes live under /api/roots/{root}. Concurrent mutations on one root are
rejected with 409 Conflict. The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache, retries)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the SVG cache")
	cmd.Flags().IntVar(&retries, "connect-retries", 5, "attempts to reach the store backend")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool, retries int) error {
	spinner := newSpinnerWithContext(ctx, "Connecting to "+c.Config.Store.Backend+" store...")
	spinner.ui = c.ui()
	spinner.Start()
	s, err := store.OpenRetry(ctx, c.Config.StoreOptions(), retries, time.Second)
	if err != nil {
		spinner.StopWithError("Store unavailable")
		return err
	}
	spinner.StopWithSuccess("Connected to " + c.Config.Store.Backend + " store")
	defer s.Close()

	ch := c.openCache(ctx, noCache)
	defer ch.Close()

	srv := server.New(s, server.Options{
		Logger:   c.Logger,
		Cache:    ch,
		Detailed: c.Config.Render.Detailed,
	})
	c.ui().info("Serving %s on %s", c.Config.Store.Backend, StyleHighlight.Render(addr))
	return srv.ListenAndServe(ctx, addr, c.Config.Server.ReadTimeout, c.Config.Server.WriteTimeout)
}
