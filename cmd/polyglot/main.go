// polyglot translates text between Japanese, Traditional Chinese, English and
// Korean from the command line, or serves the HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"polyglot/internal/app"
	"polyglot/internal/config"
	"polyglot/internal/logger"
)

// Build information (set via -ldflags)
var (
	commit = "none"
	date   = "unknown"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "polyglot",
		Short: "Detect the language of text and translate it into the other three",
		Long: `polyglot detects whether text is Japanese, Traditional Chinese, English
or Korean and translates it into the other three languages with an AI provider.

Configuration comes from POLYGLOT_* environment variables, an optional YAML
file named by POLYGLOT_CONFIG, and the AI settings saved through the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides POLYGLOT_LOG_LEVEL")

	root.AddCommand(
		newServeCmd(opts),
		newTranslateCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadApp loads the configuration, sends logs to logs and wires the services.
func loadApp(ctx context.Context, opts *rootOptions, logs io.Writer, override func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if override != nil {
		override(&cfg)
	}
	logger.InitWriter(logs, logger.ParseLevel(cfg.LogLevel))
	return app.New(ctx, cfg)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", config.AppName, config.AppVersion)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
