package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/gocontext-qa/internal/api"
	"github.com/dshills/gocontext-qa/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve search and benchmark tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(a)

			server := mcp.NewServer(mcp.Deps{
				Searcher:        a.Search,
				Benchmarker:     a.Bench,
				Indexer:         a,
				Stats:           a.Store,
				DefaultWorkers:  a.Config.LoadTestWorkers,
				DefaultDuration: a.Config.LoadTestDuration,
			}, a.Logger)

			return ignoreCancel(server.Serve(ctx))
		},
	}
}

func newHTTPCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the JSON API and Prometheus metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if addr == "" {
				addr = a.Config.HTTPAddr
			}
			server := api.NewServer(addr, api.Deps{
				Searcher:        a.Search,
				Benchmarker:     a.Bench,
				Metrics:         a.Metrics,
				DefaultWorkers:  a.Config.LoadTestWorkers,
				DefaultDuration: a.Config.LoadTestDuration,
			}, a.Logger)
			return server.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: GOCONTEXT_HTTP_ADDR)")
	return cmd
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
