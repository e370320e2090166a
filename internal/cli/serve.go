package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/journeyline/journeyline/pkg/api"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline API over HTTP",
		Long: `Serve the timeline API over HTTP.

Records are kept in the configured store (memory or MongoDB) and compiled
layouts in the configured cache (file or Redis). With the memory store, the
store.seed_file records are loaded for store.seed_user at startup.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	prog := newProgress(c.Logger)
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.WithStore(st)
	prog.done("backends ready", "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)

	srv := api.New(runner, st, cfg.Layout, c.Logger)
	return srv.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
