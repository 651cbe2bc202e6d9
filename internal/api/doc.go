// Package api serves search and benchmark operations over HTTP with echo.
//
// Routes:
//
//	POST /api/v1/search                 run a search request
//	POST /api/v1/benchmarks             run the full benchmark suite
//	POST /api/v1/benchmarks/:mode       run one mode (Bm25, Ann, Hybrid, Fallback)
//	GET  /api/v1/benchmarks/history     persisted benchmark records
//	GET  /api/v1/benchmarks/baseline    current baseline records
//	POST /api/v1/loadtests              run a load test
//	GET  /api/v1/loadtests              persisted load-test records
//	GET  /metrics                       Prometheus exposition
//	GET  /health                        liveness
//
// Errors are rendered as {"error": "...", "title": "..."} by ErrorHandler.
package api
