package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/gocontext-qa/internal/app"
	"github.com/dshills/gocontext-qa/internal/config"
	"github.com/dshills/gocontext-qa/internal/observability"
	"github.com/dshills/gocontext-qa/internal/storage"
)

var flagEnvPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gocontext-qa",
		Short:        "Hybrid code search with retrieval-quality benchmarks",
		SilenceUsage: true,
		Version:      version,
	}
	root.SetVersionTemplate(fmt.Sprintf(
		"gocontext-qa {{.Version}}\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\n",
		buildTime, storage.BuildMode, storage.DriverName))

	root.PersistentFlags().StringVar(&flagEnvPath, "env", "", "Path to a .env file (default: $ENV_PATH or ./.env)")

	root.AddCommand(
		newIndexCmd(),
		newSearchCmd(),
		newBenchCmd(),
		newLoadTestCmd(),
		newMCPCmd(),
		newHTTPCmd(),
	)
	return root
}

// openApp loads config and builds the service graph. Logs go to stderr.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(flagEnvPath)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

// closeApp releases resources, logging rather than masking the command's error
func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Warn("failed to close application", "error", err)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
