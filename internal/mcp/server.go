package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/indexer"
	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "gocontext-qa"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Searcher executes search requests
type Searcher interface {
	Execute(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)
}

// Benchmarker runs and reports benchmarks; *bench.Coordinator satisfies it
type Benchmarker interface {
	RunMode(ctx context.Context, mode bench.Mode) (bench.Result, error)
	RunSuite(ctx context.Context) (*bench.SuiteResult, error)
	RunLoadTest(ctx context.Context, workers int, duration time.Duration) (bench.LoadTestResult, error)
	History() ([]bench.Record, error)
	Baseline() ([]bench.Record, error)
	LoadTestHistory() ([]bench.LoadTestRecord, error)
}

// Indexer indexes a directory tree
type Indexer interface {
	Index(ctx context.Context, rootPath string, workers int) (*indexer.Statistics, error)
}

// StatsProvider reports index counts
type StatsProvider interface {
	Stats(ctx context.Context) (*storage.Stats, error)
}

// Deps are the services the tools call
type Deps struct {
	Searcher    Searcher
	Benchmarker Benchmarker
	Indexer     Indexer
	Stats       StatsProvider

	// Load test defaults when the caller omits them
	DefaultWorkers  int
	DefaultDuration time.Duration
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	deps   Deps
	logger *slog.Logger
}

// NewServer creates a server with every tool registered
func NewServer(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.DefaultWorkers <= 0 {
		deps.DefaultWorkers = 4
	}
	if deps.DefaultDuration <= 0 {
		deps.DefaultDuration = bench.MinBurst
	}

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		deps:   deps,
		logger: logger,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until ctx is cancelled or the client disconnects
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio", "name", ServerName, "version", ServerVersion)
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(indexRepositoryTool(), s.handleIndexRepository)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(runBenchmarkTool(), s.handleRunBenchmark)
	s.mcp.AddTool(runLoadTestTool(), s.handleRunLoadTest)
	s.mcp.AddTool(benchmarkHistoryTool(), s.handleBenchmarkHistory)
}
