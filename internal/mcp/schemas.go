package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexRepositoryTool returns the tool definition for index_repository
func indexRepositoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_repository",
		Description: "Chunk and embed a source tree into the search index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Concurrent file workers (default: number of CPUs)",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Hybrid lexical and semantic code search. Inline filters such as lang:go or path:internal/* are honored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language, identifier or quoted phrase)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100); defaults to the server's configured limit",
					"minimum":     1,
					"maximum":     100,
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one language (go, rust, python, ...)",
				},
				"repository_id": map[string]interface{}{
					"type":        "integer",
					"description": "Restrict results to one repository",
					"minimum":     0,
				},
				"file_pattern": map[string]interface{}{
					"type":        "string",
					"description": "Glob pattern for file paths (e.g., 'internal/*')",
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report chunk, embedding and file counts for the search index",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// runBenchmarkTool returns the tool definition for run_benchmark
func runBenchmarkTool() mcp.Tool {
	return mcp.Tool{
		Name:        "run_benchmark",
		Description: "Measure retrieval quality. Without a mode, runs the full suite, checks for regressions and updates the baseline.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Single mode to run; omit for the full suite",
					"enum":        []string{"Bm25", "Ann", "Hybrid", "Fallback"},
				},
			},
		},
	}
}

// runLoadTestTool returns the tool definition for run_load_test
func runLoadTestTool() mcp.Tool {
	return mcp.Tool{
		Name:        "run_load_test",
		Description: "Stress the lexical index with concurrent workers and report throughput and latency",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of concurrent workers",
					"minimum":     1,
				},
				"duration_seconds": map[string]interface{}{
					"type":        "number",
					"description": "Burst duration in seconds (minimum 5)",
					"minimum":     0,
				},
			},
		},
	}
}

// benchmarkHistoryTool returns the tool definition for benchmark_history
func benchmarkHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "benchmark_history",
		Description: "Read persisted benchmark history, the current baseline, or load-test history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Which collection to read",
					"enum":        []string{"history", "baseline", "load"},
					"default":     "history",
				},
			},
		},
	}
}
