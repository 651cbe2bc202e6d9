package alert

import (
	"context"
	"log/slog"

	"github.com/dshills/gocontext-qa/internal/observability"
)

// Severity ranks how urgent an alert is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one named, severity-tagged threshold breach
type Alert struct {
	Name      string   `json:"name"`
	Severity  Severity `json:"severity"`
	Metric    string   `json:"metric"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
	Message   string   `json:"message"`
}

// Sink accepts alerts. Delivery failures are the sink's concern.
type Sink interface {
	Fire(ctx context.Context, a Alert)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, a Alert)

func (f SinkFunc) Fire(ctx context.Context, a Alert) {
	f(ctx, a)
}

// LogSink writes alerts to a structured logger, critical at error level
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log sink. logger may be nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Fire(ctx context.Context, a Alert) {
	level := slog.LevelInfo
	switch a.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityCritical:
		level = slog.LevelError
	}

	s.logger.Log(ctx, level, a.Message,
		"alert", a.Name,
		"severity", a.Severity,
		"metric", a.Metric,
		"value", a.Value,
		"threshold", a.Threshold)
}

// MetricsSink counts alerts by name and severity
type MetricsSink struct {
	metrics *observability.Metrics
}

// NewMetricsSink creates a sink that increments AlertsFired
func NewMetricsSink(metrics *observability.Metrics) *MetricsSink {
	return &MetricsSink{metrics: metrics}
}

func (s *MetricsSink) Fire(ctx context.Context, a Alert) {
	s.metrics.AlertsFired.WithLabelValues(a.Name, string(a.Severity)).Inc()
}

// MultiSink fans an alert out to every sink in order
type MultiSink []Sink

func (m MultiSink) Fire(ctx context.Context, a Alert) {
	for _, s := range m {
		if s != nil {
			s.Fire(ctx, a)
		}
	}
}
