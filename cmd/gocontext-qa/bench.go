package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/gocontext-qa/internal/bench"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure retrieval quality and detect regressions",
	}
	cmd.AddCommand(newBenchSuiteCmd(), newBenchModeCmd(), newBenchHistoryCmd())
	return cmd
}

func newBenchSuiteCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Run every mode, compare against the baseline, then update it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.Bench.RunSuite(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			rows := make([]bench.Record, 0, len(bench.AllModes))
			for _, m := range bench.AllModes {
				if r, ok := res.Results[m]; ok {
					rows = append(rows, bench.Record{Mode: m, Result: r})
				}
			}
			if err := writeResults(out, rows); err != nil {
				return err
			}
			if len(res.Alerts) == 0 {
				fmt.Fprintln(out, "\nno regressions")
				return nil
			}
			fmt.Fprintf(out, "\n%d alert(s):\n", len(res.Alerts))
			for _, al := range res.Alerts {
				fmt.Fprintf(out, "  [%s] %s: %s\n", al.Severity, al.Name, al.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results and alerts as JSON")
	return cmd
}

func newBenchModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode <Bm25|Ann|Hybrid|Fallback>",
		Short: "Run a single benchmark mode and append it to history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := bench.ParseMode(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.Bench.RunMode(cmd.Context(), mode)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), []bench.Record{{Mode: mode, Result: res}})
		},
	}
}

func newBenchHistoryCmd() *cobra.Command {
	var baseline bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print persisted benchmark records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			read := a.Bench.History
			if baseline {
				read = a.Bench.Baseline
			}
			records, err := read()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().BoolVar(&baseline, "baseline", false, "Print the baseline instead of the full history")
	return cmd
}

func newLoadTestCmd() *cobra.Command {
	var (
		workers  int
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Run lexical queries from concurrent workers and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			if !cmd.Flags().Changed("workers") {
				workers = a.Config.LoadTestWorkers
			}
			if !cmd.Flags().Changed("duration") {
				duration = a.Config.LoadTestDuration
			}

			res, err := a.Bench.RunLoadTest(cmd.Context(), workers, duration)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent workers")
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "Burst duration (minimum 5s)")
	return cmd
}

func writeResults(out io.Writer, rows []bench.Record) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tMRR\tRECALL@K\tHIT RATE\tNDCG@K\tP50 MS\tP95 MS")
	for _, r := range rows {
		res := r.Result
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.2f\t%.2f\n",
			r.Mode, res.MRR, res.RecallAtK, res.HitRate, res.NDCGAtK, res.MedianLatencyMs, res.P95LatencyMs)
	}
	return w.Flush()
}
