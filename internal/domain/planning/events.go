package planning

import (
	"time"

	"github.com/google/uuid"
)

// Domain events emitted by the planning workflow.

// PlanSolvedEvent is emitted when the joint solve succeeds.
type PlanSolvedEvent struct {
	PlanID     uuid.UUID
	Horizon    int
	Objective  float64
	SolvedAt   time.Time
}

func (e PlanSolvedEvent) EventName() string     { return "planning.plan_solved" }
func (e PlanSolvedEvent) OccurredAt() time.Time { return e.SolvedAt }

// PlanDegradedEvent is emitted when the joint solve fails and the fallback
// planner produces the plan instead.
type PlanDegradedEvent struct {
	PlanID     uuid.UUID
	Cause      string
	DegradedAt time.Time
}

func (e PlanDegradedEvent) EventName() string     { return "planning.plan_degraded" }
func (e PlanDegradedEvent) OccurredAt() time.Time { return e.DegradedAt }
