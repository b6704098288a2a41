// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the planning core exposes to the outside world.
package inbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/ports/outbound"
)

// PlannerService defines the meal-plan optimization use cases. Each call is
// one synchronous, CPU-bound unit of work; callers wanting responsiveness
// run it on a dedicated worker and read progress through the sink.
type PlannerService interface {
	// OptimizePlan produces a multi-day plan for the request. It returns
	// either a complete plan (possibly with advisory warnings) or a typed
	// failure, never a silent partial result.
	OptimizePlan(ctx context.Context, cmd OptimizePlanCommand) (*PlanDTO, error)

	// RefinePlan re-plans with extra hard constraints: kept dishes become
	// required, rejected dishes become excluded.
	RefinePlan(ctx context.Context, cmd RefinePlanCommand) (*PlanDTO, error)
}

// OptimizePlanCommand carries the immutable request and an optional
// progress sink.
type OptimizePlanCommand struct {
	Request  *planning.PlanningRequest
	Progress outbound.ProgressSink
}

// RefinePlanCommand re-enters the planning flow at the filter stage.
type RefinePlanCommand struct {
	Request         *planning.PlanningRequest
	KeepDishIDs     []uuid.UUID
	RejectedDishIDs []uuid.UUID
	Progress        outbound.ProgressSink
}

// PlanDTO is the response shape of one optimize call.
type PlanDTO struct {
	PlanID           uuid.UUID                        `json:"plan_id"`
	HorizonDays      int                              `json:"horizon_days"`
	People           int                              `json:"people"`
	CookingSchedule  []planning.CookingEvent          `json:"cooking_schedule"`
	DailyAssignments []planning.DailyAssignment       `json:"daily_assignments"`
	ShoppingList     []planning.ShoppingItem          `json:"shopping_list"`
	NutrientTotals   planning.NutrientVector          `json:"overall_nutrient_totals"`
	Achievement      map[planning.NutrientKey]float64 `json:"overall_achievement_percentages"`
	Warnings         []planning.Warning               `json:"warnings"`
	Degraded         bool                             `json:"degraded"`
}
