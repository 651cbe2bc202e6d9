package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/indexer"
	"github.com/dshills/gocontext-qa/internal/search"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeInvalidQuery       = -32004 // Query could not be parsed or enriched
	ErrorCodeRetrievalFailed    = -32005 // Retrieval backend failed
	ErrorCodeBenchmarkFailed    = -32006 // Benchmark or load test aborted
)

// handleIndexRepository handles the index_repository tool invocation
func (s *Server) handleIndexRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	workers := getIntDefault(args, "workers", 0)

	stats, err := s.deps.Indexer.Index(ctx, path, workers)
	if errors.Is(err, indexer.ErrIndexInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":            true,
		"files_indexed":      stats.FilesIndexed,
		"files_failed":       stats.FilesFailed,
		"chunks_created":     stats.ChunksCreated,
		"embeddings_created": stats.EmbeddingsCreated,
		"duration_ms":        stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	req := types.SearchRequest{Query: query}

	// An omitted limit is left to the coordinator's configured default
	if _, ok := args["limit"]; ok {
		limit := getIntDefault(args, "limit", 0)
		if limit < 1 || limit > search.MaxLimit {
			return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
				"param": "limit",
				"value": args["limit"],
			})
		}
		req.Limit = types.IntPtr(limit)
	}

	filters := &types.SearchFilters{
		Language:        getStringDefault(args, "language", ""),
		FilePathPattern: getStringDefault(args, "file_pattern", ""),
	}
	if _, ok := args["repository_id"]; ok {
		repo := getIntDefault(args, "repository_id", -1)
		if repo < 0 {
			return nil, newMCPError(ErrorCodeInvalidParams, "repository_id must be a non-negative integer", map[string]interface{}{
				"param": "repository_id",
				"value": args["repository_id"],
			})
		}
		filters.RepositoryID = types.Uint64Ptr(uint64(repo))
	}
	if filters.Language != "" || filters.FilePathPattern != "" || filters.RepositoryID != nil {
		req.Filters = filters
	}

	resp, err := s.deps.Searcher.Execute(ctx, req)
	if err != nil {
		return nil, searchError(err)
	}

	return mcp.NewToolResultText(formatJSON(resp)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.deps.Stats.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": stats.ChunksCount > 0,
		"statistics": map[string]interface{}{
			"files_count":      stats.FilesCount,
			"chunks_count":     stats.ChunksCount,
			"embeddings_count": stats.EmbeddingsCount,
			"index_size_mb":    fmt.Sprintf("%.2f", stats.IndexSizeMB),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRunBenchmark handles the run_benchmark tool invocation
func (s *Server) handleRunBenchmark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	if name := getStringDefault(args, "mode", ""); name != "" {
		mode, err := bench.ParseMode(name)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
				"param":   "mode",
				"value":   name,
				"allowed": bench.AllModes,
			})
		}

		result, err := s.deps.Benchmarker.RunMode(ctx, mode)
		if err != nil {
			return nil, benchmarkError(err)
		}
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"mode":   mode,
			"result": result,
		})), nil
	}

	suite, err := s.deps.Benchmarker.RunSuite(ctx)
	if err != nil {
		return nil, benchmarkError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results":     suite.Results,
		"alerts":      suite.Alerts,
		"alert_count": len(suite.Alerts),
	})), nil
}

// handleRunLoadTest handles the run_load_test tool invocation
func (s *Server) handleRunLoadTest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	workers := getIntDefault(args, "workers", s.deps.DefaultWorkers)
	if workers < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "workers must be at least 1", map[string]interface{}{
			"param": "workers",
			"value": workers,
		})
	}

	duration := s.deps.DefaultDuration
	if secs, ok := args["duration_seconds"].(float64); ok {
		if secs < 0 {
			return nil, newMCPError(ErrorCodeInvalidParams, "duration_seconds must not be negative", map[string]interface{}{
				"param": "duration_seconds",
				"value": secs,
			})
		}
		duration = time.Duration(secs * float64(time.Second))
	}

	result, err := s.deps.Benchmarker.RunLoadTest(ctx, workers, duration)
	if err != nil {
		return nil, benchmarkError(err)
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleBenchmarkHistory handles the benchmark_history tool invocation
func (s *Server) handleBenchmarkHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	var (
		data interface{}
		err  error
	)
	switch kind := getStringDefault(args, "kind", "history"); kind {
	case "history":
		data, err = s.deps.Benchmarker.History()
	case "baseline":
		data, err = s.deps.Benchmarker.Baseline()
	case "load":
		data, err = s.deps.Benchmarker.LoadTestHistory()
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid kind", map[string]interface{}{
			"param":   "kind",
			"value":   kind,
			"allowed": []string{"history", "baseline", "load"},
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read benchmark data", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(data)), nil
}

// Helper functions

// searchError maps a search failure onto an MCP error code
func searchError(err error) error {
	data := map[string]interface{}{"error": err.Error()}
	switch {
	case search.IsKind(err, search.KindParse), search.IsKind(err, search.KindEnrich):
		return newMCPError(ErrorCodeInvalidQuery, "invalid query", data)
	case search.IsKind(err, search.KindHybrid):
		return newMCPError(ErrorCodeRetrievalFailed, "retrieval failed", data)
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", data)
	}
}

func benchmarkError(err error) error {
	data := map[string]interface{}{"error": err.Error()}
	var ioErr *bench.IOError
	switch {
	case errors.As(err, &ioErr):
		data["path"] = ioErr.Path
		return newMCPError(ErrorCodeInternalError, "benchmark storage failed", data)
	case errors.Is(err, bench.ErrWorkerFailure):
		return newMCPError(ErrorCodeBenchmarkFailed, "load test worker failed", data)
	default:
		return newMCPError(ErrorCodeBenchmarkFailed, "benchmark failed", data)
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable directory
// containing at least one indexable file
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	found := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if _, ok := types.LanguageForPath(p); ok {
				found = true
				return filepath.SkipAll
			}
		}
		return nil
	})

	if !found {
		return ErrNoIndexableFiles
	}

	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired     = errors.New("path is required")
	ErrPathNotAbsolute  = errors.New("path must be absolute")
	ErrPathNotFound     = errors.New("path does not exist")
	ErrPathNotReadable  = errors.New("path is not readable")
	ErrNotDirectory     = errors.New("path is not a directory")
	ErrNoIndexableFiles = errors.New("directory does not contain indexable source files")
)
