package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gocontext-qa/internal/query"
	"github.com/dshills/gocontext-qa/internal/retrieval"
	"github.com/dshills/gocontext-qa/pkg/types"
)

const (
	// DefaultLimit is used when neither the request nor the config sets one
	DefaultLimit = 10
	// MaxLimit caps the number of results per request
	MaxLimit = 100
)

// HybridEngine fuses lexical, vector and graph signals into ranked hits
type HybridEngine interface {
	Search(ctx context.Context, text string, limit int, filters *types.VectorFilters) (*retrieval.Result, error)
}

// Coordinator runs one search request through the query pipeline,
// retrieval and result mapping. It holds no per-request state.
type Coordinator struct {
	pipeline     query.Pipeline
	engine       HybridEngine
	mapper       *ResultMapper
	defaultLimit int
	logger       *slog.Logger
	newID        func() string
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithDefaultLimit sets the limit used when a request omits one
func WithDefaultLimit(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.defaultLimit = min(limit, MaxLimit)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a search coordinator
func NewCoordinator(pipeline query.Pipeline, engine HybridEngine, mapper *ResultMapper, opts ...Option) *Coordinator {
	c := &Coordinator{
		pipeline:     pipeline,
		engine:       engine,
		mapper:       mapper,
		defaultLimit: DefaultLimit,
		logger:       slog.Default(),
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the request. Failures are returned as *SearchError with
// kind KindParse, KindEnrich or KindHybrid; nothing is retried.
func (c *Coordinator) Execute(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	parsed, err := c.pipeline.Parse(ctx, req.Query)
	if err != nil {
		return nil, newError(KindParse, err)
	}
	if err := c.pipeline.Validate(ctx, parsed); err != nil {
		return nil, newError(KindParse, err)
	}

	intent := c.pipeline.Classify(ctx, parsed)

	enriched, err := c.pipeline.Enrich(ctx, parsed, intent)
	if err != nil {
		return nil, newError(KindEnrich, err)
	}

	filters := MergeFilters(req.Filters, enriched.Filters)
	limit := c.resolveLimit(req.Limit)
	text := strings.Join(enriched.ExpandedTerms, " ")

	start := time.Now()
	result, err := c.engine.Search(ctx, text, limit, filters)
	elapsed := time.Since(start)
	if err != nil {
		return nil, newError(KindHybrid, fmt.Errorf("retrieval for %q: %w", text, err))
	}

	results := make([]types.SearchResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, c.mapper.Map(ctx, hit, enriched.ExpandedTerms))
	}

	resp := &types.SearchResponse{
		Results:     results,
		TotalFound:  len(result.Hits),
		QueryTimeMs: elapsed.Milliseconds(),
		RequestID:   c.newID(),
	}

	c.logger.Debug("search executed",
		"request_id", resp.RequestID,
		"intent", intent,
		"terms", len(enriched.ExpandedTerms),
		"filtered", filters != nil,
		"hits", resp.TotalFound,
		"query_time_ms", resp.QueryTimeMs)

	return resp, nil
}

func (c *Coordinator) resolveLimit(limit *int) int {
	if limit == nil || *limit <= 0 {
		return c.defaultLimit
	}
	return min(*limit, MaxLimit)
}
