// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the planning core uses to reach its collaborators.
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/planner/internal/domain/planning"
)

// DishCatalogProvider supplies dish entities with nutrient vectors already
// computed. Nutrient derivation from raw ingredient composition is not part
// of the planning core. The catalog is read-only input for a solve.
type DishCatalogProvider interface {
	FindAll(ctx context.Context) ([]*planning.Dish, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*planning.Dish, error)
	FindExcludingAllergens(ctx context.Context, allergens []planning.Allergen) ([]*planning.Dish, error)
}

// DishServing pairs a dish with a consumed serving count.
type DishServing struct {
	Dish     *planning.Dish
	Servings int
}

// NutrientCalculator aggregates nutrient totals and achievement for a set
// of dish servings.
type NutrientCalculator interface {
	// Aggregate sums per-serving nutrient vectors over the servings.
	Aggregate(servings []DishServing) planning.NutrientVector
	// Achievement converts horizon totals into per-nutrient percentages of
	// the daily per-person targets.
	Achievement(
		totals planning.NutrientVector,
		targets map[planning.NutrientKey]planning.NutrientTarget,
		days, people int,
	) map[planning.NutrientKey]float64
}

// ProgressSnapshot is one entry of the ordered, append-only progress
// sequence emitted during a solve.
type ProgressSnapshot struct {
	Phase   string        `json:"phase"`
	Message string        `json:"message"`
	Percent int           `json:"percent"`
	Elapsed time.Duration `json:"elapsed"`
}

// ProgressSink consumes progress snapshots. Snapshots arrive in order with
// non-decreasing percent values; consumers provide no acknowledgement and
// apply no backpressure. The transport behind the sink is not a concern of
// the core.
type ProgressSink interface {
	Publish(snapshot ProgressSnapshot)
}
