package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(context.Context, *CycleRecord) error { return nil }
func (n *NoopRecorder) RecentCycles(context.Context, int) ([]CycleRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
