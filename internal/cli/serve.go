package cli

import (
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and JSON API",
		Long: `Serve starts an HTTP server exposing the requirements checker as a web
page and a JSON API at POST /api/check. The server shuts down
gracefully on SIGINT and SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			engine, err := c.newEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			srv := server.New(engine, c.Logger,
				server.WithAddr(cfg.Server.Addr),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Std()),
			)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
