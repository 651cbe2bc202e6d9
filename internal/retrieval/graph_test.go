package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

type fakeCorpus struct {
	refs     []storage.ChunkRef
	version  string
	listErr  error
	lists    int
	lastFilt *types.VectorFilters
}

func (f *fakeCorpus) ListChunks(ctx context.Context, filters *types.VectorFilters) ([]storage.ChunkRef, error) {
	f.lists++
	f.lastFilt = filters
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.refs, nil
}

func (f *fakeCorpus) CorpusVersion(ctx context.Context) (string, error) {
	return f.version, nil
}

func doc(id int64, content string) storage.ChunkRef {
	return storage.ChunkRef{ChunkID: id, FilePath: "f.go", Language: "go", RepositoryID: 1, Content: content}
}

func newRetryCorpus() *fakeCorpus {
	return &fakeCorpus{
		version: "v1",
		refs: []storage.ChunkRef{
			doc(1, "retry backoff jitter"),
			doc(2, "retry backoff exponential"),
			doc(3, "backoff jitter sleep"),
			doc(4, "http server listen"),
			doc(5, "cache lru eviction"),
		},
	}
}

func graphIDs(results []GraphResult) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	return ids
}

func TestCooccurrenceGraph_ExpandsToNeighbors(t *testing.T) {
	g := NewCooccurrenceGraph(newRetryCorpus(), GraphConfig{})

	results, err := g.Score(context.Background(), []string{"retry"}, 10, nil)
	require.NoError(t, err)

	// Chunk 3 has no "retry" but shares "backoff", which co-occurs with it.
	assert.Equal(t, []int64{1, 2, 3}, graphIDs(results))
	assert.InDelta(t, results[0].Score, results[1].Score, 1e-12)
	assert.Greater(t, results[1].Score, results[2].Score)
	assert.Equal(t, "backoff jitter sleep", results[2].Content)
}

func TestCooccurrenceGraph_MinSupport(t *testing.T) {
	g := NewCooccurrenceGraph(newRetryCorpus(), GraphConfig{MinSupport: 3})

	results, err := g.Score(context.Background(), []string{"retry"}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, graphIDs(results))
}

func TestCooccurrenceGraph_Limit(t *testing.T) {
	g := NewCooccurrenceGraph(newRetryCorpus(), GraphConfig{})

	results, err := g.Score(context.Background(), []string{"retry"}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, graphIDs(results))

	results, err = g.Score(context.Background(), []string{"retry"}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCooccurrenceGraph_UnknownTerms(t *testing.T) {
	g := NewCooccurrenceGraph(newRetryCorpus(), GraphConfig{})

	results, err := g.Score(context.Background(), []string{"kubernetes", "42"}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCooccurrenceGraph_CachesByVersion(t *testing.T) {
	corpus := newRetryCorpus()
	g := NewCooccurrenceGraph(corpus, GraphConfig{})
	ctx := context.Background()

	_, err := g.Score(ctx, []string{"retry"}, 10, nil)
	require.NoError(t, err)
	_, err = g.Score(ctx, []string{"cache"}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.lists)

	corpus.version = "v2"
	corpus.refs = append(corpus.refs, doc(6, "retry policy"))
	results, err := g.Score(ctx, []string{"retry"}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.lists)
	assert.Contains(t, graphIDs(results), int64(6))
}

func TestCooccurrenceGraph_FilteredBypassesCache(t *testing.T) {
	corpus := newRetryCorpus()
	g := NewCooccurrenceGraph(corpus, GraphConfig{})
	filters := &types.VectorFilters{Language: types.StringPtr("go")}

	_, err := g.Score(context.Background(), []string{"retry"}, 10, filters)
	require.NoError(t, err)
	_, err = g.Score(context.Background(), []string{"retry"}, 10, filters)
	require.NoError(t, err)

	assert.Equal(t, 2, corpus.lists)
	assert.Same(t, filters, corpus.lastFilt)
}

func TestCooccurrenceGraph_CorpusError(t *testing.T) {
	corpus := newRetryCorpus()
	corpus.listErr = errors.New("db closed")
	g := NewCooccurrenceGraph(corpus, GraphConfig{})

	_, err := g.Score(context.Background(), []string{"retry"}, 10, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
}

func TestEngine_FallbackUsesGraph(t *testing.T) {
	index := &mockIndex{
		searchTextFunc: func(ctx context.Context, query string, limit int, filters *types.VectorFilters) ([]storage.TextResult, error) {
			return textResults(1, 2), nil
		},
	}
	e := newTestEngine(index, WithGraph(NewCooccurrenceGraph(newRetryCorpus(), GraphConfig{})))

	res, err := e.SearchStrategy(context.Background(), StrategyFallback, "retry", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.GraphCount)
	assert.Contains(t, hitIDs(res.Hits), int64(3))

	lexical, err := e.SearchStrategy(context.Background(), StrategyLexical, "retry", 10, nil)
	require.NoError(t, err)
	assert.NotEqual(t, hitIDs(lexical.Hits), hitIDs(res.Hits))
}

func TestGraphTerms(t *testing.T) {
	assert.Equal(t, []string{"parseconfig", "reads", "x_y"}, graphTerms("ParseConfig reads a 42 x_y parseconfig"))
}
