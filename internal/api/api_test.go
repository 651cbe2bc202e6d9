package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/observability"
	"github.com/dshills/gocontext-qa/internal/search"
	"github.com/dshills/gocontext-qa/pkg/types"
)

type fakeSearcher struct {
	err  error
	last types.SearchRequest
}

func (f *fakeSearcher) Execute(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &types.SearchResponse{
		Results:    []types.SearchResult{{ChunkID: 7, Score: 0.8, Metadata: types.ResultMetadata{FilePath: "a.go"}}},
		TotalFound: 1,
	}, nil
}

type fakeBenchmarker struct {
	suiteErr    error
	loadErr     error
	gotMode     bench.Mode
	loadWorkers int
	loadDur     time.Duration
	history     []bench.Record
	loads       []bench.LoadTestRecord
}

func (f *fakeBenchmarker) RunMode(ctx context.Context, mode bench.Mode) (bench.Result, error) {
	f.gotMode = mode
	return bench.Result{MRR: 0.6, K: 10, QueryCount: 4}, nil
}

func (f *fakeBenchmarker) RunSuite(ctx context.Context) (*bench.SuiteResult, error) {
	if f.suiteErr != nil {
		return nil, f.suiteErr
	}
	return &bench.SuiteResult{Results: map[bench.Mode]bench.Result{bench.ModeHybrid: {MRR: 0.7}}}, nil
}

func (f *fakeBenchmarker) RunLoadTest(ctx context.Context, workers int, duration time.Duration) (bench.LoadTestResult, error) {
	f.loadWorkers, f.loadDur = workers, duration
	if f.loadErr != nil {
		return bench.LoadTestResult{}, f.loadErr
	}
	return bench.LoadTestResult{WorkerCount: workers, TotalQueries: 50, ActualQPS: 10}, nil
}

func (f *fakeBenchmarker) History() ([]bench.Record, error)  { return f.history, nil }
func (f *fakeBenchmarker) Baseline() ([]bench.Record, error) { return f.history, nil }
func (f *fakeBenchmarker) LoadTestHistory() ([]bench.LoadTestRecord, error) {
	return f.loads, nil
}

func newTestServer(t *testing.T) (*Server, *fakeSearcher, *fakeBenchmarker, *observability.Metrics) {
	t.Helper()
	s := &fakeSearcher{}
	b := &fakeBenchmarker{
		history: []bench.Record{
			{Mode: bench.ModeBm25, Result: bench.Result{MRR: 0.4}},
			{Mode: bench.ModeHybrid, Result: bench.Result{MRR: 0.7}},
		},
		loads: []bench.LoadTestRecord{
			{Result: bench.LoadTestResult{WorkerCount: 1}},
			{Result: bench.LoadTestResult{WorkerCount: 2}},
			{Result: bench.LoadTestResult{WorkerCount: 4}},
		},
	}
	m := observability.NewMetrics()
	srv := NewServer(":0", Deps{
		Searcher:        s,
		Benchmarker:     b,
		Metrics:         m,
		DefaultWorkers:  3,
		DefaultDuration: 6 * time.Second,
	}, observability.NewLogger(observability.LogConfig{Output: io.Discard}))
	return srv, s, b, m
}

func do(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	rec := do(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	srv, s, _, m := newTestServer(t)

	rec := do(srv, http.MethodPost, "/api/v1/search",
		`{"query":"http handler","limit":5,"filters":{"language":"go"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a.go", resp.Results[0].Metadata.FilePath)

	assert.Equal(t, "http handler", s.last.Query)
	require.NotNil(t, s.last.Limit)
	assert.Equal(t, 5, *s.last.Limit)
	require.NotNil(t, s.last.Filters)
	assert.Equal(t, "go", s.last.Filters.Language)

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestSearchValidation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query":"   "}`},
		{"zero limit", `{"query":"x","limit":0}`},
		{"malformed body", `{"query":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(srv, http.MethodPost, "/api/v1/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation error", decodeError(t, rec)["title"])
		})
	}
}

func TestSearchErrorKinds(t *testing.T) {
	tests := []struct {
		kind   search.ErrorKind
		status int
	}{
		{search.KindParse, http.StatusBadRequest},
		{search.KindEnrich, http.StatusUnprocessableEntity},
		{search.KindHybrid, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			srv, s, _, _ := newTestServer(t)
			s.err = &search.SearchError{Kind: tt.kind, Err: errors.New("boom")}

			rec := do(srv, http.MethodPost, "/api/v1/search", `{"query":"x"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeError(t, rec)["error"], "boom")
		})
	}
}

func TestUnclassifiedErrorHidesDetail(t *testing.T) {
	srv, s, _, _ := newTestServer(t)
	s.err = errors.New("secret detail")

	rec := do(srv, http.MethodPost, "/api/v1/search", `{"query":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal server error", body["error"])
}

func TestRunSuite(t *testing.T) {
	srv, _, b, _ := newTestServer(t)

	rec := do(srv, http.MethodPost, "/api/v1/benchmarks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Hybrid"`)

	b.suiteErr = &bench.IOError{Op: "write", Path: "/x/history.json", Err: errors.New("disk full")}
	rec = do(srv, http.MethodPost, "/api/v1/benchmarks", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "benchmark storage error", decodeError(t, rec)["title"])
}

func TestRunMode(t *testing.T) {
	srv, _, b, _ := newTestServer(t)

	rec := do(srv, http.MethodPost, "/api/v1/benchmarks/hybrid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bench.ModeHybrid, b.gotMode)

	rec = do(srv, http.MethodPost, "/api/v1/benchmarks/bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryFilter(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := do(srv, http.MethodGet, "/api/v1/benchmarks/history?mode=bm25", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []bench.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, bench.ModeBm25, records[0].Mode)

	rec = do(srv, http.MethodGet, "/api/v1/benchmarks/baseline", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestRunLoadTest(t *testing.T) {
	srv, _, b, _ := newTestServer(t)

	rec := do(srv, http.MethodPost, "/api/v1/loadtests", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, b.loadWorkers)
	assert.Equal(t, 6*time.Second, b.loadDur)

	rec = do(srv, http.MethodPost, "/api/v1/loadtests", `{"workers":8,"duration_seconds":1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, b.loadWorkers)
	assert.Equal(t, 1500*time.Millisecond, b.loadDur)

	rec = do(srv, http.MethodPost, "/api/v1/loadtests", `{"workers":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	b.loadErr = errors.Join(bench.ErrWorkerFailure, errors.New("index gone"))
	rec = do(srv, http.MethodPost, "/api/v1/loadtests", `{}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoadTestsLimit(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := do(srv, http.MethodGet, "/api/v1/loadtests?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []bench.LoadTestRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 4, records[1].Result.WorkerCount)

	rec = do(srv, http.MethodGet, "/api/v1/loadtests?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	do(srv, http.MethodGet, "/health", "")

	rec := do(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gocontext_http_request_duration_seconds")
}

func TestUnknownRoute(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	rec := do(srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
