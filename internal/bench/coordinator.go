package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/gocontext-qa/internal/alert"
	"github.com/dshills/gocontext-qa/internal/observability"
)

// SuiteResult is the outcome of a full suite run
type SuiteResult struct {
	Results map[Mode]Result `json:"results"`
	Alerts  []alert.Alert   `json:"alerts"`
}

// Coordinator runs benchmarks and load tests and persists their results.
// Modes run sequentially on the calling goroutine.
type Coordinator struct {
	harness Harness
	store   *Storage
	sink    alert.Sink
	load    LoadRunner
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithMetrics records run outcomes on metrics
func WithMetrics(m *observability.Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithCoordinatorLogger sets the logger
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator creates a benchmark coordinator
func NewCoordinator(harness Harness, store *Storage, sink alert.Sink, load LoadRunner, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		harness: harness,
		store:   store,
		sink:    sink,
		load:    load,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunMode runs the harness once for mode and appends the result to history
func (c *Coordinator) RunMode(ctx context.Context, mode Mode) (Result, error) {
	result, err := c.harness.Run(ctx, mode)
	if err != nil {
		c.observeRun(mode, "error", 0)
		return Result{}, fmt.Errorf("failed to run benchmark %s: %w", mode, err)
	}

	rec := Record{Timestamp: c.now(), Mode: mode, Result: result}
	if err := c.store.Persist(rec); err != nil {
		c.observeRun(mode, "error", 0)
		return Result{}, fmt.Errorf("failed to persist benchmark %s: %w", mode, err)
	}

	c.observeRun(mode, "success", result.MRR)
	c.logger.Info("benchmark completed",
		"mode", mode,
		"mrr", result.MRR,
		"recall_at_k", result.RecallAtK,
		"queries", result.QueryCount)

	return result, nil
}

// RunSuite runs every mode in order, compares the results against the
// baseline loaded before the first mode ran, fires any alerts and then
// replaces the baseline. The first failing mode aborts the suite; modes
// already persisted stay in history and the baseline is left untouched.
func (c *Coordinator) RunSuite(ctx context.Context) (*SuiteResult, error) {
	baseline, err := c.store.BaselineMap()
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}

	results := make(map[Mode]Result, len(AllModes))
	for _, mode := range AllModes {
		res, err := c.RunMode(ctx, mode)
		if err != nil {
			return nil, err
		}
		results[mode] = res
	}

	alerts := Detect(results, baseline)
	for _, a := range alerts {
		c.sink.Fire(ctx, a)
	}

	if err := c.store.UpdateBaseline(results, c.now()); err != nil {
		return nil, fmt.Errorf("failed to update baseline: %w", err)
	}

	c.logger.Info("benchmark suite completed",
		"modes", len(results),
		"alerts", len(alerts))

	return &SuiteResult{Results: results, Alerts: alerts}, nil
}

// RunLoadTest runs a load test and appends it to the load-test history.
// Nothing is persisted when the run fails.
func (c *Coordinator) RunLoadTest(ctx context.Context, workers int, duration time.Duration) (LoadTestResult, error) {
	result, err := c.load.Run(ctx, workers, duration)
	if err != nil {
		return LoadTestResult{}, fmt.Errorf("failed to run load test: %w", err)
	}

	if err := c.store.PersistLoadTest(LoadTestRecord{Timestamp: c.now(), Result: result}); err != nil {
		return LoadTestResult{}, fmt.Errorf("failed to persist load test: %w", err)
	}

	if c.metrics != nil {
		c.metrics.LoadTestQPS.Set(result.ActualQPS)
		c.metrics.LoadTestMedianLatency.Set(result.MedianLatencyMs)
	}

	return result, nil
}

// History returns all persisted benchmark records
func (c *Coordinator) History() ([]Record, error) {
	return c.store.ReadHistory()
}

// Baseline returns the current baseline records
func (c *Coordinator) Baseline() ([]Record, error) {
	return c.store.ReadBaseline()
}

// LoadTestHistory returns all persisted load tests
func (c *Coordinator) LoadTestHistory() ([]LoadTestRecord, error) {
	return c.store.ReadLoadTests()
}

func (c *Coordinator) observeRun(mode Mode, status string, mrr float64) {
	if c.metrics == nil {
		return
	}
	c.metrics.BenchmarkRuns.WithLabelValues(string(mode), status).Inc()
	if status == "success" {
		c.metrics.BenchmarkMRR.WithLabelValues(string(mode)).Set(mrr)
	}
}
