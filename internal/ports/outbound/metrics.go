package outbound

import "time"

// PlannerMetrics records solve outcomes for monitoring. Implementations
// must be safe for concurrent use; the core calls them inline.
type PlannerMetrics interface {
	// RecordSolve observes one completed optimize call with its outcome
	// ("solved", "fallback", or "failed") and total duration.
	RecordSolve(outcome string, duration time.Duration)
	// RecordFallback counts one activation of the fallback planner.
	RecordFallback()
	// RecordRejection counts one request rejected before solving, by error
	// code.
	RecordRejection(code string)
}
