package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"polyglot/internal/config"
	"polyglot/internal/snowflake"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API, the static front-end and the idle-session sweeper.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := snowflake.Init(0); err != nil {
				return err
			}
			a, err := loadApp(ctx, opts, cmd.OutOrStdout(), func(cfg *config.Config) {
				if addr != "" {
					cfg.Addr = addr
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides POLYGLOT_ADDR")
	return cmd
}
