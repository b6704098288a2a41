// Package progress provides progress sink adapters for solve runs.
package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/ports/outbound"
)

// LogSink writes progress snapshots to the structured log. It is the
// default sink of the CLI.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logging progress sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("progress")}
}

// Publish implements outbound.ProgressSink.
func (s *LogSink) Publish(snapshot outbound.ProgressSnapshot) {
	s.logger.Info("solve progress",
		zap.String("phase", snapshot.Phase),
		zap.Int("percent", snapshot.Percent),
		zap.Duration("elapsed", snapshot.Elapsed),
	)
}

// MemorySink records snapshots in order, for tests and for callers that
// render progress themselves after the fact.
type MemorySink struct {
	mu        sync.Mutex
	snapshots []outbound.ProgressSnapshot
}

// NewMemorySink creates an in-memory progress sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish implements outbound.ProgressSink.
func (s *MemorySink) Publish(snapshot outbound.ProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
}

// Snapshots returns the recorded sequence in publish order.
func (s *MemorySink) Snapshots() []outbound.ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbound.ProgressSnapshot(nil), s.snapshots...)
}
