package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocontext-qa/internal/retrieval"
	"github.com/dshills/gocontext-qa/pkg/types"
)

type mockSearcher struct {
	searchFunc func(ctx context.Context, strategy retrieval.Strategy, text string, limit int) (*retrieval.Result, error)
	strategies []retrieval.Strategy
}

func (m *mockSearcher) SearchStrategy(ctx context.Context, strategy retrieval.Strategy, text string, limit int, filters *types.VectorFilters) (*retrieval.Result, error) {
	m.strategies = append(m.strategies, strategy)
	return m.searchFunc(ctx, strategy, text, limit)
}

func hitsFor(paths ...string) *retrieval.Result {
	hits := make([]retrieval.Hit, len(paths))
	for i, p := range paths {
		hits[i] = retrieval.Hit{ChunkID: int64(i + 1), FilePath: p}
	}
	return &retrieval.Result{Hits: hits}
}

func TestRetrievalHarness_Run(t *testing.T) {
	qs := QuerySet{Queries: []Query{
		{ID: "first", Query: "alpha", Relevant: []string{"pkg/a.go"}},
		{ID: "second", Query: "beta", Relevant: []string{"pkg/b.go", "pkg/c.go"}},
		{ID: "miss", Query: "gamma", Relevant: []string{"pkg/z.go"}},
	}}
	searcher := &mockSearcher{searchFunc: func(ctx context.Context, strategy retrieval.Strategy, text string, limit int) (*retrieval.Result, error) {
		switch text {
		case "alpha":
			return hitsFor("/repo/pkg/a.go", "/repo/pkg/a.go", "/repo/pkg/x.go"), nil
		case "beta":
			return hitsFor("/repo/pkg/x.go", "/repo/pkg/b.go"), nil
		default:
			return hitsFor("/repo/pkg/x.go"), nil
		}
	}}

	h := NewRetrievalHarness(searcher, qs, 5, nil)
	res, err := h.Run(context.Background(), ModeBm25)

	require.NoError(t, err)
	assert.Equal(t, 3, res.QueryCount)
	assert.Equal(t, 5, res.K)
	// reciprocal ranks: 1, 1/2, 0
	assert.InDelta(t, 0.5, res.MRR, 1e-9)
	// recalls: 1, 1/2, 0
	assert.InDelta(t, 0.5, res.RecallAtK, 1e-9)
	assert.InDelta(t, 2.0/3.0, res.HitRate, 1e-9)
	assert.Greater(t, res.NDCGAtK, 0.0)
	assert.LessOrEqual(t, res.NDCGAtK, 1.0)
	for _, s := range searcher.strategies {
		assert.Equal(t, retrieval.StrategyLexical, s)
	}
}

func TestRetrievalHarness_ModeStrategies(t *testing.T) {
	want := map[Mode]retrieval.Strategy{
		ModeBm25:     retrieval.StrategyLexical,
		ModeAnn:      retrieval.StrategyVector,
		ModeHybrid:   retrieval.StrategyHybrid,
		ModeFallback: retrieval.StrategyFallback,
	}
	for mode, strategy := range want {
		assert.Equal(t, strategy, mode.Strategy(), mode)
	}
}

func TestRetrievalHarness_Errors(t *testing.T) {
	boom := errors.New("index unavailable")
	searcher := &mockSearcher{searchFunc: func(ctx context.Context, strategy retrieval.Strategy, text string, limit int) (*retrieval.Result, error) {
		return nil, boom
	}}

	_, err := NewRetrievalHarness(searcher, DefaultQuerySet(), 0, nil).Run(context.Background(), ModeAnn)
	assert.ErrorIs(t, err, boom)

	_, err = NewRetrievalHarness(searcher, QuerySet{}, 0, nil).Run(context.Background(), ModeAnn)
	assert.ErrorIs(t, err, ErrEmptyQuerySet)
}

func TestRankingHelpers(t *testing.T) {
	files := []string{"a.go", "b.go", "c.go"}

	assert.InDelta(t, 1.0/3.0, reciprocalRank(files, []string{"c.go"}), 1e-9)
	assert.Zero(t, reciprocalRank(files, []string{"d.go"}))
	assert.InDelta(t, 0.5, recallAtK(files, []string{"c.go", "d.go"}, 3), 1e-9)
	assert.Zero(t, recallAtK(files, []string{"c.go"}, 2))
	assert.InDelta(t, 1.0, ndcgAtK(files, []string{"a.go"}, 3), 1e-9)
	assert.Zero(t, ndcgAtK(files, nil, 3))
}
