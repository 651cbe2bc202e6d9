// Package sysmetrics samples resource usage of the current process.
package sysmetrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Sampler reports process CPU and memory. Both calls are infallible;
// implementations report 0 when a sample cannot be taken.
type Sampler interface {
	CPUPercent(ctx context.Context) float64
	UsedMemoryBytes(ctx context.Context) uint64
}

// ProcessSampler samples this process through gopsutil
type ProcessSampler struct {
	proc   *process.Process
	logger *slog.Logger
}

// NewProcessSampler creates a sampler for the current process
func NewProcessSampler(ctx context.Context, logger *slog.Logger) (*ProcessSampler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", os.Getpid(), err)
	}
	return &ProcessSampler{proc: proc, logger: logger}, nil
}

// CPUPercent returns CPU usage since process start as a percentage of one core
func (s *ProcessSampler) CPUPercent(ctx context.Context) float64 {
	pct, err := s.proc.CPUPercentWithContext(ctx)
	if err != nil {
		s.logger.Warn("cpu sample failed", "error", err)
		return 0
	}
	return pct
}

// UsedMemoryBytes returns the resident set size
func (s *ProcessSampler) UsedMemoryBytes(ctx context.Context) uint64 {
	info, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		s.logger.Warn("memory sample failed", "error", err)
		return 0
	}
	return info.RSS
}
