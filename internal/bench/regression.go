package bench

import (
	"fmt"

	"github.com/dshills/gocontext-qa/internal/alert"
)

const (
	// HybridDelta is the minimum MRR lead Hybrid must hold over Bm25
	HybridDelta = 0.15
	// FallbackDelta is the minimum MRR lead Fallback must hold over Bm25
	FallbackDelta = 0.05
	// DegradeTolerance is how far a mode's MRR may drop below its baseline
	DegradeTolerance = 0.02
)

// Detect compares the latest results against each other and against the
// baseline. Every applicable rule fires; alerts are ordered cross-mode
// rules first, then per-mode regressions in AllModes order. Detect has no
// side effects.
func Detect(latest map[Mode]Result, baseline map[Mode]Record) []alert.Alert {
	var alerts []alert.Alert

	if bm25, ok := latest[ModeBm25]; ok {
		if hybrid, ok := latest[ModeHybrid]; ok {
			if delta := hybrid.MRR - bm25.MRR; delta < HybridDelta {
				alerts = append(alerts, alert.Alert{
					Name:      "HybridQualityDelta",
					Severity:  alert.SeverityCritical,
					Metric:    "mrr_delta",
					Value:     delta,
					Threshold: HybridDelta,
					Message: fmt.Sprintf("hybrid MRR %.3f leads bm25 %.3f by %.3f, below %.2f",
						hybrid.MRR, bm25.MRR, delta, HybridDelta),
				})
			}
		}
		if fallback, ok := latest[ModeFallback]; ok {
			if delta := fallback.MRR - bm25.MRR; delta < FallbackDelta {
				alerts = append(alerts, alert.Alert{
					Name:      "FallbackQualityDelta",
					Severity:  alert.SeverityWarning,
					Metric:    "mrr_delta",
					Value:     delta,
					Threshold: FallbackDelta,
					Message: fmt.Sprintf("fallback MRR %.3f leads bm25 %.3f by %.3f, below %.2f",
						fallback.MRR, bm25.MRR, delta, FallbackDelta),
				})
			}
		}
	}

	for _, mode := range AllModes {
		cur, ok := latest[mode]
		if !ok {
			continue
		}
		base, ok := baseline[mode]
		if !ok {
			continue
		}
		if cur.MRR+DegradeTolerance < base.Result.MRR {
			alerts = append(alerts, alert.Alert{
				Name:      string(mode) + "Regression",
				Severity:  alert.SeverityWarning,
				Metric:    "mrr",
				Value:     cur.MRR,
				Threshold: base.Result.MRR + DegradeTolerance,
				Message: fmt.Sprintf("%s MRR %.3f dropped below baseline %.3f (recorded %s)",
					mode, cur.MRR, base.Result.MRR, base.Timestamp.Format("2006-01-02T15:04:05Z07:00")),
			})
		}
	}

	return alerts
}
