package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/internal/sysmetrics"
)

// MinBurst is the shortest load test burst
const MinBurst = 5 * time.Second

// LexicalHandle is one worker's private lexical index connection
type LexicalHandle interface {
	Search(ctx context.Context, query string, k int) ([]storage.TextResult, error)
	Close() error
}

// IndexOpener opens a fresh lexical index handle for path
type IndexOpener func(path string) (LexicalHandle, error)

// OpenSQLiteLexical opens a handle on the SQLite FTS index
func OpenSQLiteLexical(path string) (LexicalHandle, error) {
	idx, err := storage.OpenLexicalIndex(path)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// LoadRunner runs a load test
type LoadRunner interface {
	Run(ctx context.Context, workers int, duration time.Duration) (LoadTestResult, error)
}

// LoadTester hammers the lexical index from a fixed pool of workers.
// Workers share nothing but the sample channel.
type LoadTester struct {
	open      IndexOpener
	indexPath string
	queries   []string
	k         int
	sampler   sysmetrics.Sampler
	minBurst  time.Duration
	logger    *slog.Logger
}

// LoadTesterOption configures a LoadTester
type LoadTesterOption func(*LoadTester)

// WithMinBurst overrides the burst floor
func WithMinBurst(d time.Duration) LoadTesterOption {
	return func(lt *LoadTester) {
		lt.minBurst = d
	}
}

// WithResultsPerQuery sets k for each load-test query
func WithResultsPerQuery(k int) LoadTesterOption {
	return func(lt *LoadTester) {
		if k > 0 {
			lt.k = k
		}
	}
}

// WithLoadLogger sets the logger
func WithLoadLogger(logger *slog.Logger) LoadTesterOption {
	return func(lt *LoadTester) {
		if logger != nil {
			lt.logger = logger
		}
	}
}

// NewLoadTester creates a load tester cycling through queries
func NewLoadTester(open IndexOpener, indexPath string, queries []string, sampler sysmetrics.Sampler, opts ...LoadTesterOption) *LoadTester {
	lt := &LoadTester{
		open:      open,
		indexPath: indexPath,
		queries:   queries,
		k:         DefaultK,
		sampler:   sampler,
		minBurst:  MinBurst,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(lt)
	}
	return lt
}

// Run starts max(workers, 1) workers for max(duration, burst floor). Each
// worker opens its own index handle and issues queries back to back until
// the deadline; a query in flight at the deadline is allowed to finish.
// Any worker error or panic fails the whole run and discards all samples.
func (lt *LoadTester) Run(ctx context.Context, workers int, duration time.Duration) (LoadTestResult, error) {
	if len(lt.queries) == 0 {
		return LoadTestResult{}, ErrEmptyQuerySet
	}

	workers = max(workers, 1)
	burst := max(duration, lt.minBurst)
	deadline := time.Now().Add(burst)

	lt.logger.Info("load test starting",
		"workers", workers,
		"burst", burst,
		"index", lt.indexPath)

	g, gctx := errgroup.WithContext(ctx)
	samples := make(chan time.Duration, workers*64)

	for id := range workers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					lt.logger.Error("load test worker panicked",
						"worker", id,
						"panic", r,
						"stack", string(debug.Stack()))
					err = fmt.Errorf("%w: worker %d: panic: %v", ErrWorkerFailure, id, r)
				}
			}()
			if err := lt.work(gctx, id, deadline, samples); err != nil {
				return fmt.Errorf("%w: worker %d: %w", ErrWorkerFailure, id, err)
			}
			return nil
		})
	}

	// Close once every producer is done so the drain loop terminates.
	errc := make(chan error, 1)
	go func() {
		errc <- g.Wait()
		close(samples)
	}()

	var collected []time.Duration
	for d := range samples {
		collected = append(collected, d)
	}
	if err := <-errc; err != nil {
		lt.logger.Error("load test aborted", "error", err, "discarded_samples", len(collected))
		return LoadTestResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return LoadTestResult{}, fmt.Errorf("load test cancelled: %w", err)
	}

	stats := ComputeLatencyStats(collected)
	result := LoadTestResult{
		WorkerCount:      workers,
		DurationSeconds:  burst.Seconds(),
		TotalQueries:     len(collected),
		ActualQPS:        float64(len(collected)) / burst.Seconds(),
		MedianLatencyMs:  Millis(stats.Median),
		MaxLatencyMs:     Millis(stats.Max),
		CPUPercent:       lt.sampler.CPUPercent(ctx),
		MemoryUsageBytes: lt.sampler.UsedMemoryBytes(ctx),
	}

	lt.logger.Info("load test completed",
		"workers", result.WorkerCount,
		"total_queries", result.TotalQueries,
		"qps", result.ActualQPS,
		"median_latency_ms", result.MedianLatencyMs,
		"max_latency_ms", result.MaxLatencyMs)

	return result, nil
}

func (lt *LoadTester) work(ctx context.Context, id int, deadline time.Time, samples chan<- time.Duration) error {
	handle, err := lt.open(lt.indexPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			lt.logger.Warn("failed to close worker index", "worker", id, "error", cerr)
		}
	}()

	for i := id; time.Now().Before(deadline); i++ {
		// Another worker failed; stop issuing queries.
		if err := ctx.Err(); err != nil {
			return nil
		}

		q := lt.queries[i%len(lt.queries)]
		start := time.Now()
		if _, err := handle.Search(ctx, q, lt.k); err != nil {
			return fmt.Errorf("query %q: %w", q, err)
		}
		samples <- time.Since(start)
	}
	return nil
}
