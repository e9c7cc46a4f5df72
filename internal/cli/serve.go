package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pidforge/internal/metrics"
	"github.com/matzehuels/pidforge/internal/server"
	"github.com/matzehuels/pidforge/pkg/store"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog and schematic HTTP API",
		Long: `Run the HTTP API used by the web editor.

The server exposes the component catalog, stores posted schematics in the
configured store backend and renders exports. It stops on SIGINT or SIGTERM,
letting in-flight requests finish. Prometheus metrics are served at /metrics
unless server.disable_metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			src, release, err := c.catalogSource(ctx)
			if err != nil {
				return err
			}
			defer release()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			printKeyValue("Listening", StyleLink.Render(listenURL(addr)))
			printKeyValue("Store", cfg.Store.Backend)
			if cfg.Store.Backend == store.BackendMemory {
				printWarning("Schematics are kept in memory and lost on exit")
			}

			var collector *metrics.Collector
			if !cfg.Server.DisableMetrics {
				collector = metrics.New(appName)
				collector.Register()
				printKeyValue("Metrics", StyleLink.Render(listenURL(addr)+"/metrics"))
			}

			srv := server.New(server.Options{
				Catalog:     src,
				Store:       st,
				Logger:      c.Logger,
				CORSOrigins: cfg.Server.CORSOrigins,
				Timeout:     cfg.Server.Timeout,
				Metrics:     collector,
			})
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return err
			}
			printSuccess("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	return cmd
}

// listenURL turns a listen address into a browsable URL.
func listenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
