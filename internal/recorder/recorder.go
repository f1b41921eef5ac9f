package recorder

import (
	"context"
	"time"

	"SignalSentinel/internal/model"
)

// CycleRecord is one audit row per cycle. It holds counts only, never signals.
type CycleRecord struct {
	ID           string
	StartedAt    time.Time
	Trigger      string
	Forced       bool
	Skipped      bool
	SuccessCount int
	ErrorCount   int
	SkippedCount int
	Duration     time.Duration
}

// FromReport converts a cycle report into its audit row.
func FromReport(r model.CycleReport) *CycleRecord {
	return &CycleRecord{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		Trigger:      string(r.Trigger),
		Forced:       r.Forced,
		Skipped:      r.Skipped,
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
		SkippedCount: r.SkippedCount,
		Duration:     r.Duration,
	}
}

// Recorder persists the cycle audit log.
type Recorder interface {
	RecordCycle(ctx context.Context, rec *CycleRecord) error
	RecentCycles(ctx context.Context, limit int) ([]CycleRecord, error)
	Close() error
}
