package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

func TestComputeLatencyStats_Median(t *testing.T) {
	tests := []struct {
		name    string
		samples []time.Duration
		want    float64
	}{
		{name: "even count averages middle values", samples: ms(40, 10, 30, 20), want: 25},
		{name: "odd count takes middle value", samples: ms(30, 10, 20), want: 20},
		{name: "single sample", samples: ms(7), want: 7},
		{name: "empty", samples: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeLatencyStats(tt.samples)
			assert.InDelta(t, tt.want, Millis(stats.Median), 1e-9)
		})
	}
}

func TestComputeLatencyStats_Summary(t *testing.T) {
	samples := ms(50, 10, 40, 20, 30)

	stats := ComputeLatencyStats(samples)

	assert.Equal(t, 10*time.Millisecond, stats.Min)
	assert.Equal(t, 50*time.Millisecond, stats.Max)
	assert.Equal(t, 30*time.Millisecond, stats.Mean)
	assert.Equal(t, 5, stats.SampleCount)
	assert.Equal(t, 30*time.Millisecond, stats.Percentiles[50])
	assert.InDelta(t, 48, Millis(stats.Percentiles[95]), 1e-3)
	// input is not reordered
	assert.Equal(t, ms(50, 10, 40, 20, 30), samples)
}
