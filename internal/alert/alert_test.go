package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocontext-qa/internal/observability"
)

var critical = Alert{
	Name:      "HybridQualityDelta",
	Severity:  SeverityCritical,
	Metric:    "mrr_delta",
	Value:     0.1,
	Threshold: 0.15,
	Message:   "hybrid MRR lead over BM25 below threshold",
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	NewLogSink(logger).Fire(context.Background(), critical)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "HybridQualityDelta", record["alert"])
	assert.Equal(t, "critical", record["severity"])
	assert.Equal(t, 0.15, record["threshold"])
}

func TestMetricsSink(t *testing.T) {
	m := observability.NewMetrics()
	sink := NewMetricsSink(m)

	sink.Fire(context.Background(), critical)
	sink.Fire(context.Background(), critical)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertsFired.WithLabelValues("HybridQualityDelta", "critical")))
}

func TestMultiSink(t *testing.T) {
	var order []string
	multi := MultiSink{
		SinkFunc(func(ctx context.Context, a Alert) { order = append(order, "first:"+a.Name) }),
		nil,
		SinkFunc(func(ctx context.Context, a Alert) { order = append(order, "second:"+a.Name) }),
	}

	multi.Fire(context.Background(), critical)
	assert.Equal(t, []string{"first:HybridQualityDelta", "second:HybridQualityDelta"}, order)
}
