package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/gocontext-qa/internal/retrieval"
)

// Mode is the retrieval strategy a benchmark exercises
type Mode string

const (
	ModeBm25     Mode = "Bm25"
	ModeAnn      Mode = "Ann"
	ModeHybrid   Mode = "Hybrid"
	ModeFallback Mode = "Fallback"
)

// AllModes lists every mode in suite order
var AllModes = []Mode{ModeBm25, ModeAnn, ModeHybrid, ModeFallback}

// ParseMode resolves a mode name case-insensitively
func ParseMode(name string) (Mode, error) {
	for _, m := range AllModes {
		if strings.EqualFold(string(m), strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Strategy maps the mode onto a retrieval strategy
func (m Mode) Strategy() retrieval.Strategy {
	switch m {
	case ModeBm25:
		return retrieval.StrategyLexical
	case ModeAnn:
		return retrieval.StrategyVector
	case ModeFallback:
		return retrieval.StrategyFallback
	default:
		return retrieval.StrategyHybrid
	}
}

func (m Mode) String() string {
	return string(m)
}

// Result is the outcome of one benchmark run over a query set
type Result struct {
	MRR             float64 `json:"mrr"`
	RecallAtK       float64 `json:"recall_at_k"`
	HitRate         float64 `json:"hit_rate"`
	NDCGAtK         float64 `json:"ndcg_at_k"`
	K               int     `json:"k"`
	QueryCount      int     `json:"query_count"`
	MedianLatencyMs float64 `json:"median_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms"`
}

// Record is a timestamped, mode-tagged Result
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Mode      Mode      `json:"mode"`
	Result    Result    `json:"result"`
}

// LoadTestResult aggregates one load test
type LoadTestResult struct {
	WorkerCount      int     `json:"worker_count"`
	DurationSeconds  float64 `json:"duration_seconds"`
	TotalQueries     int     `json:"total_queries"`
	ActualQPS        float64 `json:"actual_qps"`
	MedianLatencyMs  float64 `json:"median_latency_ms"`
	MaxLatencyMs     float64 `json:"max_latency_ms"`
	CPUPercent       float64 `json:"cpu_percent"`
	MemoryUsageBytes uint64  `json:"memory_usage_bytes"`
}

// LoadTestRecord is a timestamped LoadTestResult
type LoadTestRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Result    LoadTestResult `json:"result"`
}
