// Package mcp implements the Model Context Protocol (MCP) server for gocontext-qa.
//
// The server exposes search and retrieval-quality tools to MCP clients:
//   - index_repository: Chunk and embed a source tree
//   - search_code: Hybrid code search with optional filters
//   - get_status: Index counts
//   - run_benchmark: Run one mode or the full regression suite
//   - run_load_test: Stress the lexical index with concurrent workers
//   - benchmark_history: Read history, baseline or load-test records
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout carries the protocol, so all logging goes to stderr.
//
// # Basic Usage
//
//	gocontext-qa mcp
//
// # Tool: search_code
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "query": "retry with backoff lang:go",
//	    "limit": 5,
//	    "file_pattern": "internal/*"
//	  }
//	}
//
//	Response:
//	{
//	  "results": [
//	    {
//	      "chunk_id": 42,
//	      "score": 0.0327,
//	      "content": "func retry(...)",
//	      "metadata": {"file_path": "internal/client/retry.go", "language": "go", ...},
//	      "highlights": ["retry", "backoff"]
//	    }
//	  ],
//	  "total_found": 1,
//	  "query_time_ms": 3,
//	  "request_id": "3f0c..."
//	}
//
// Inline filters in the query (lang:, repo:, path:) override the matching
// argument.
//
// # Tool: run_benchmark
//
// Without a mode the full suite runs Bm25, Ann, Hybrid and Fallback in that
// order, compares against the stored baseline and replaces it:
//
//	Response:
//	{
//	  "results": {"Bm25": {"mrr": 0.41, ...}, "Hybrid": {"mrr": 0.58, ...}, ...},
//	  "alerts": [],
//	  "alert_count": 0
//	}
//
// # Tool: run_load_test
//
//	Request:  {"name": "run_load_test", "arguments": {"workers": 8, "duration_seconds": 10}}
//	Response: {"worker_count": 8, "duration_seconds": 10, "total_queries": 5120, "actual_qps": 512, ...}
//
// # Error Handling
//
// Handlers return *MCPError values with JSON-RPC codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32002  indexing already in progress
//	-32004  query could not be parsed or enriched
//	-32005  retrieval backend failed
//	-32006  benchmark or load test aborted
package mcp
