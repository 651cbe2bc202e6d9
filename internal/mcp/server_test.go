package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocontext-qa/internal/alert"
	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/indexer"
	"github.com/dshills/gocontext-qa/internal/query"
	"github.com/dshills/gocontext-qa/internal/retrieval"
	"github.com/dshills/gocontext-qa/internal/search"
	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

type mockSearcher struct {
	executeFunc func(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)
	last        types.SearchRequest
}

func (m *mockSearcher) Execute(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	m.last = req
	return m.executeFunc(ctx, req)
}

type mockBenchmarker struct {
	runModeErr  error
	suite       *bench.SuiteResult
	suiteErr    error
	loadErr     error
	loadWorkers int
	loadDur     time.Duration
	history     []bench.Record
	loads       []bench.LoadTestRecord
}

func (m *mockBenchmarker) RunMode(ctx context.Context, mode bench.Mode) (bench.Result, error) {
	if m.runModeErr != nil {
		return bench.Result{}, m.runModeErr
	}
	return bench.Result{MRR: 0.5, QueryCount: 3}, nil
}

func (m *mockBenchmarker) RunSuite(ctx context.Context) (*bench.SuiteResult, error) {
	return m.suite, m.suiteErr
}

func (m *mockBenchmarker) RunLoadTest(ctx context.Context, workers int, duration time.Duration) (bench.LoadTestResult, error) {
	m.loadWorkers, m.loadDur = workers, duration
	if m.loadErr != nil {
		return bench.LoadTestResult{}, m.loadErr
	}
	return bench.LoadTestResult{WorkerCount: workers, TotalQueries: 100}, nil
}

func (m *mockBenchmarker) History() ([]bench.Record, error)  { return m.history, nil }
func (m *mockBenchmarker) Baseline() ([]bench.Record, error) { return m.history[:1], nil }
func (m *mockBenchmarker) LoadTestHistory() ([]bench.LoadTestRecord, error) {
	return m.loads, nil
}

type mockIndexer struct {
	err     error
	gotPath string
}

func (m *mockIndexer) Index(ctx context.Context, rootPath string, workers int) (*indexer.Statistics, error) {
	m.gotPath = rootPath
	if m.err != nil {
		return nil, m.err
	}
	return &indexer.Statistics{FilesIndexed: 2, ChunksCreated: 5, Duration: time.Second}, nil
}

type mockStats struct{}

func (mockStats) Stats(ctx context.Context) (*storage.Stats, error) {
	return &storage.Stats{ChunksCount: 5, EmbeddingsCount: 5, FilesCount: 2, IndexSizeMB: 0.25}, nil
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func requireMCPError(t *testing.T, err error, code int) *MCPError {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

func newTestServer() (*Server, *mockSearcher, *mockBenchmarker, *mockIndexer) {
	searcher := &mockSearcher{executeFunc: func(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
		return &types.SearchResponse{
			Results:    []types.SearchResult{{ChunkID: 1, Score: 0.9, Metadata: types.ResultMetadata{FilePath: "a.go"}}},
			TotalFound: 1,
			RequestID:  "req-1",
		}, nil
	}}
	b := &mockBenchmarker{
		suite: &bench.SuiteResult{
			Results: map[bench.Mode]bench.Result{bench.ModeBm25: {MRR: 0.4}, bench.ModeHybrid: {MRR: 0.5}},
			Alerts:  []alert.Alert{{Name: "HybridQualityDelta", Severity: alert.SeverityCritical}},
		},
		history: []bench.Record{{Mode: bench.ModeBm25}, {Mode: bench.ModeAnn}},
		loads:   []bench.LoadTestRecord{{Result: bench.LoadTestResult{WorkerCount: 2}}},
	}
	idx := &mockIndexer{}
	s := NewServer(Deps{
		Searcher:        searcher,
		Benchmarker:     b,
		Indexer:         idx,
		Stats:           mockStats{},
		DefaultWorkers:  3,
		DefaultDuration: 7 * time.Second,
	}, nil)
	return s, searcher, b, idx
}

func TestNewServer(t *testing.T) {
	s, _, _, _ := newTestServer()
	assert.NotNil(t, s.mcp)

	d := NewServer(Deps{}, nil)
	assert.Equal(t, 4, d.deps.DefaultWorkers)
	assert.Equal(t, bench.MinBurst, d.deps.DefaultDuration)
}

func TestHandleSearchCode(t *testing.T) {
	s, searcher, _, _ := newTestServer()

	res, err := s.handleSearchCode(context.Background(), callRequest("search_code", map[string]interface{}{
		"query":         "parse config",
		"limit":         float64(5),
		"language":      "go",
		"repository_id": float64(2),
		"file_pattern":  "internal/*",
	}))
	require.NoError(t, err)

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, 1, resp.TotalFound)

	require.NotNil(t, searcher.last.Limit)
	assert.Equal(t, 5, *searcher.last.Limit)
	require.NotNil(t, searcher.last.Filters)
	assert.Equal(t, "go", searcher.last.Filters.Language)
	assert.Equal(t, uint64(2), *searcher.last.Filters.RepositoryID)
	assert.Equal(t, "internal/*", searcher.last.Filters.FilePathPattern)
}

func TestHandleSearchCode_NoFilters(t *testing.T) {
	s, searcher, _, _ := newTestServer()

	_, err := s.handleSearchCode(context.Background(), callRequest("search_code", map[string]interface{}{"query": "x"}))
	require.NoError(t, err)
	assert.Nil(t, searcher.last.Filters)
	assert.Nil(t, searcher.last.Limit)
}

type limitRecordingEngine struct {
	limit int
}

func (e *limitRecordingEngine) Search(ctx context.Context, text string, limit int, filters *types.VectorFilters) (*retrieval.Result, error) {
	e.limit = limit
	return &retrieval.Result{Hits: []retrieval.Hit{}}, nil
}

func TestHandleSearchCode_ConfiguredDefaultLimit(t *testing.T) {
	engine := &limitRecordingEngine{}
	coordinator := search.NewCoordinator(
		query.NewDefaultPipeline(),
		engine,
		search.NewResultMapper(nil, nil),
		search.WithDefaultLimit(7),
	)
	s := NewServer(Deps{Searcher: coordinator}, nil)

	_, err := s.handleSearchCode(context.Background(), callRequest("search_code", map[string]interface{}{"query": "parse config"}))
	require.NoError(t, err)
	assert.Equal(t, 7, engine.limit)

	_, err = s.handleSearchCode(context.Background(), callRequest("search_code", map[string]interface{}{
		"query": "parse config",
		"limit": float64(3),
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, engine.limit)
}

func TestHandleSearchCode_InvalidParams(t *testing.T) {
	s, _, _, _ := newTestServer()

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing query", map[string]interface{}{}, ErrorCodeInvalidQuery},
		{"limit too large", map[string]interface{}{"query": "x", "limit": float64(500)}, ErrorCodeInvalidParams},
		{"zero limit", map[string]interface{}{"query": "x", "limit": float64(0)}, ErrorCodeInvalidParams},
		{"non-numeric limit", map[string]interface{}{"query": "x", "limit": "five"}, ErrorCodeInvalidParams},
		{"negative repository", map[string]interface{}{"query": "x", "repository_id": float64(-3)}, ErrorCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleSearchCode(context.Background(), callRequest("search_code", tt.args))
			requireMCPError(t, err, tt.code)
		})
	}

	_, err := s.handleSearchCode(context.Background(), mcp.CallToolRequest{})
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestSearchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"parse", &search.SearchError{Kind: search.KindParse, Err: errors.New("bad quote")}, ErrorCodeInvalidQuery},
		{"enrich", &search.SearchError{Kind: search.KindEnrich, Err: errors.New("nothing")}, ErrorCodeInvalidQuery},
		{"hybrid", fmt.Errorf("wrapped: %w", &search.SearchError{Kind: search.KindHybrid, Err: errors.New("db")}), ErrorCodeRetrievalFailed},
		{"other", errors.New("boom"), ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireMCPError(t, searchError(tt.err), tt.code)
		})
	}
}

func TestHandleRunBenchmark(t *testing.T) {
	s, _, b, _ := newTestServer()

	res, err := s.handleRunBenchmark(context.Background(), callRequest("run_benchmark", nil))
	require.NoError(t, err)

	var suite struct {
		Results    map[string]bench.Result `json:"results"`
		AlertCount int                     `json:"alert_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &suite))
	assert.Equal(t, 1, suite.AlertCount)
	assert.InDelta(t, 0.4, suite.Results["Bm25"].MRR, 1e-9)

	res, err = s.handleRunBenchmark(context.Background(), callRequest("run_benchmark", map[string]interface{}{"mode": "hybrid"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"mode": "Hybrid"`)

	_, err = s.handleRunBenchmark(context.Background(), callRequest("run_benchmark", map[string]interface{}{"mode": "graph"}))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	b.suiteErr = &bench.IOError{Op: "write", Path: "/bench/benchmark-baseline.json", Err: os.ErrPermission}
	_, err = s.handleRunBenchmark(context.Background(), callRequest("run_benchmark", nil))
	mcpErr := requireMCPError(t, err, ErrorCodeInternalError)
	assert.Equal(t, "/bench/benchmark-baseline.json", mcpErr.Data.(map[string]interface{})["path"])
}

func TestHandleRunLoadTest(t *testing.T) {
	s, _, b, _ := newTestServer()

	_, err := s.handleRunLoadTest(context.Background(), callRequest("run_load_test", nil))
	require.NoError(t, err)
	assert.Equal(t, 3, b.loadWorkers)
	assert.Equal(t, 7*time.Second, b.loadDur)

	res, err := s.handleRunLoadTest(context.Background(), callRequest("run_load_test", map[string]interface{}{
		"workers":          float64(8),
		"duration_seconds": 1.5,
	}))
	require.NoError(t, err)
	assert.Equal(t, 8, b.loadWorkers)
	assert.Equal(t, 1500*time.Millisecond, b.loadDur)
	assert.Contains(t, resultText(t, res), `"worker_count": 8`)

	_, err = s.handleRunLoadTest(context.Background(), callRequest("run_load_test", map[string]interface{}{"workers": float64(0)}))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	b.loadErr = fmt.Errorf("failed to run load test: %w", bench.ErrWorkerFailure)
	_, err = s.handleRunLoadTest(context.Background(), callRequest("run_load_test", nil))
	requireMCPError(t, err, ErrorCodeBenchmarkFailed)
}

func TestHandleBenchmarkHistory(t *testing.T) {
	s, _, _, _ := newTestServer()

	tests := []struct {
		kind string
		want int
	}{
		{"history", 2},
		{"baseline", 1},
		{"load", 1},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			res, err := s.handleBenchmarkHistory(context.Background(), callRequest("benchmark_history", map[string]interface{}{"kind": tt.kind}))
			require.NoError(t, err)

			var records []json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &records))
			assert.Len(t, records, tt.want)
		})
	}

	_, err := s.handleBenchmarkHistory(context.Background(), callRequest("benchmark_history", map[string]interface{}{"kind": "everything"}))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleIndexRepository(t *testing.T) {
	s, _, _, idx := newTestServer()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0644))

	res, err := s.handleIndexRepository(context.Background(), callRequest("index_repository", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	assert.Equal(t, root, idx.gotPath)
	assert.Contains(t, resultText(t, res), `"chunks_created": 5`)

	idx.err = indexer.ErrIndexInProgress
	_, err = s.handleIndexRepository(context.Background(), callRequest("index_repository", map[string]interface{}{"path": root}))
	requireMCPError(t, err, ErrorCodeIndexingInProgress)

	_, err = s.handleIndexRepository(context.Background(), callRequest("index_repository", map[string]interface{}{"path": "relative/dir"}))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleGetStatus(t *testing.T) {
	s, _, _, _ := newTestServer()

	res, err := s.handleGetStatus(context.Background(), callRequest("get_status", nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, `"indexed": true`)
	assert.Contains(t, text, `"chunks_count": 5`)
}

func TestValidatePath(t *testing.T) {
	withCode := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(withCode, "lib.rs"), []byte("fn main() {}"), 0644))
	empty := t.TempDir()
	file := filepath.Join(withCode, "lib.rs")

	tests := []struct {
		name string
		path string
		want error
	}{
		{"valid", withCode, nil},
		{"empty", "", ErrPathRequired},
		{"relative", "src", ErrPathNotAbsolute},
		{"missing", filepath.Join(empty, "nope"), ErrPathNotFound},
		{"file", file, ErrNotDirectory},
		{"no source files", empty, ErrNoIndexableFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
