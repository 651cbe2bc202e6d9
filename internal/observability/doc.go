// Package observability provides structured logging and Prometheus metrics.
//
// Logs are written with log/slog as JSON by default. Metrics live on a
// private registry exposed through Metrics.Handler.
package observability
