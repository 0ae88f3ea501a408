package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

var verbose bool

// rootCmd serves the directory when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "shelf",
	Short:         "A personal directory of learning resources",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server.

Configuration comes from SHELF_* environment variables; see DESIGN.md for the
full list.`,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level for one-shot commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ shelf: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}

// openCore loads the config and the storage stack for a one-shot command.
// These commands log at warn unless --verbose so their output stays readable.
func openCore(ctx context.Context) (*config.Config, logger.Logger, *app.Core, error) {
	cfg := config.Load()
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.PrettyLog)

	core, err := app.OpenCore(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, core, nil
}
