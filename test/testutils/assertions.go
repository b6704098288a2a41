// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/planner/internal/domain/planning"
)

// PlanAssertions provides plan-specific assertion methods
type PlanAssertions struct {
	t *testing.T
}

// NewPlanAssertions creates a new plan assertions helper
func NewPlanAssertions(t *testing.T) *PlanAssertions {
	return &PlanAssertions{t: t}
}

// Conserved asserts that every cooked serving is consumed exactly once.
func (a *PlanAssertions) Conserved(plan *planning.MultiDayPlan) {
	a.t.Helper()
	require.NoError(a.t, plan.CheckConservation())
}

// WithinStorageWindows asserts that every consumption event falls inside
// the storage window of its batch.
func (a *PlanAssertions) WithinStorageWindows(plan *planning.MultiDayPlan, dishes map[uuid.UUID]*planning.Dish) {
	a.t.Helper()
	for _, c := range plan.Consumption {
		dish, ok := dishes[c.DishID]
		require.True(a.t, ok, "consumption references unknown dish %s", c.DishID)
		assert.GreaterOrEqual(a.t, c.Day, c.CookDay)
		assert.LessOrEqual(a.t, c.Day, c.CookDay+dish.StorageDays)
	}
}

// NeverServes asserts that a dish appears nowhere in the plan.
func (a *PlanAssertions) NeverServes(plan *planning.MultiDayPlan, dishID uuid.UUID) {
	a.t.Helper()
	for _, ev := range plan.CookingSchedule {
		assert.NotEqual(a.t, dishID, ev.DishID)
	}
	for _, c := range plan.Consumption {
		assert.NotEqual(a.t, dishID, c.DishID)
	}
}

// MeetsCategoryBounds asserts that each daily assignment satisfies the
// per-slot category bounds of the request.
func (a *PlanAssertions) MeetsCategoryBounds(plan *planning.MultiDayPlan, req *planning.PlanningRequest) {
	a.t.Helper()
	for _, day := range plan.DailyAssignments {
		for _, slot := range req.EnabledSlots() {
			counts := make(map[planning.DishCategory]int)
			for _, served := range day.Meals[slot] {
				counts[served.Category]++
			}
			for cat, bounds := range req.Slots[slot].Categories {
				assert.GreaterOrEqual(a.t, counts[cat], bounds.Min,
					"day %d %s: too few %s dishes", day.Day, slot, cat)
				assert.LessOrEqual(a.t, counts[cat], bounds.Max,
					"day %d %s: too many %s dishes", day.Day, slot, cat)
			}
		}
	}
}
