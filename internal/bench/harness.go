package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dshills/gocontext-qa/internal/retrieval"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// DefaultK is the rank cutoff for recall and nDCG
const DefaultK = 10

// Harness runs one benchmark pass for a mode
type Harness interface {
	Run(ctx context.Context, mode Mode) (Result, error)
}

// StrategySearcher runs a retrieval strategy; *retrieval.Engine satisfies it
type StrategySearcher interface {
	SearchStrategy(ctx context.Context, strategy retrieval.Strategy, text string, limit int, filters *types.VectorFilters) (*retrieval.Result, error)
}

// RetrievalHarness scores a query set against a retrieval engine. Relevance
// is judged per file: a hit counts when its path ends with a relevant path.
type RetrievalHarness struct {
	searcher StrategySearcher
	queries  QuerySet
	k        int
	logger   *slog.Logger
}

// NewRetrievalHarness creates a harness; k <= 0 uses DefaultK
func NewRetrievalHarness(searcher StrategySearcher, queries QuerySet, k int, logger *slog.Logger) *RetrievalHarness {
	if k <= 0 {
		k = DefaultK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalHarness{searcher: searcher, queries: queries, k: k, logger: logger}
}

// Run evaluates every query with the mode's strategy. Queries run
// sequentially; the first retrieval error aborts the run.
func (h *RetrievalHarness) Run(ctx context.Context, mode Mode) (Result, error) {
	if len(h.queries.Queries) == 0 {
		return Result{}, ErrEmptyQuerySet
	}

	var rrSum, recallSum, ndcgSum float64
	var hits int
	latencies := make([]time.Duration, 0, len(h.queries.Queries))

	for _, q := range h.queries.Queries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		start := time.Now()
		res, err := h.searcher.SearchStrategy(ctx, mode.Strategy(), q.Query, h.k, nil)
		latencies = append(latencies, time.Since(start))
		if err != nil {
			return Result{}, fmt.Errorf("failed to run query %s in mode %s: %w", q.ID, mode, err)
		}

		files := rankedFiles(res.Hits)
		rr := reciprocalRank(files, q.Relevant)
		rrSum += rr
		if rr > 0 {
			hits++
		}
		recallSum += recallAtK(files, q.Relevant, h.k)
		ndcgSum += ndcgAtK(files, q.Relevant, h.k)
	}

	n := float64(len(h.queries.Queries))
	stats := ComputeLatencyStats(latencies)
	result := Result{
		MRR:             rrSum / n,
		RecallAtK:       recallSum / n,
		HitRate:         float64(hits) / n,
		NDCGAtK:         ndcgSum / n,
		K:               h.k,
		QueryCount:      len(h.queries.Queries),
		MedianLatencyMs: Millis(stats.Median),
		P95LatencyMs:    Millis(stats.Percentiles[95]),
	}

	h.logger.Debug("benchmark mode evaluated",
		"mode", mode,
		"queries", result.QueryCount,
		"mrr", result.MRR,
		"recall_at_k", result.RecallAtK)

	return result, nil
}

// rankedFiles lists hit file paths by first appearance
func rankedFiles(hits []retrieval.Hit) []string {
	seen := make(map[string]bool, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.FilePath] {
			continue
		}
		seen[h.FilePath] = true
		out = append(out, h.FilePath)
	}
	return out
}

func isRelevant(file string, relevant []string) bool {
	for _, r := range relevant {
		if file == r || strings.HasSuffix(file, "/"+strings.TrimPrefix(r, "/")) {
			return true
		}
	}
	return false
}

// reciprocalRank returns 1/rank of the first relevant file
func reciprocalRank(files, relevant []string) float64 {
	for i, f := range files {
		if isRelevant(f, relevant) {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// recallAtK computes the fraction of relevant files found in the top k
func recallAtK(files, relevant []string, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	found := 0
	for _, r := range relevant {
		for _, f := range files[:min(k, len(files))] {
			if isRelevant(f, []string{r}) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(relevant))
}

// ndcgAtK uses binary gains
func ndcgAtK(files, relevant []string, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	var dcg float64
	for i, f := range files[:min(k, len(files))] {
		if isRelevant(f, relevant) {
			dcg += 1 / math.Log2(float64(i+2))
		}
	}
	var idcg float64
	for i := 0; i < min(k, len(relevant)); i++ {
		idcg += 1 / math.Log2(float64(i+2))
	}
	return min(dcg/idcg, 1)
}
