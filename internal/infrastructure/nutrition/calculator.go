// Package nutrition implements nutrient aggregation over dish servings.
package nutrition

import (
	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/ports/outbound"
)

// Calculator implements outbound.NutrientCalculator by summing the
// precomputed per-serving nutrient vectors of the catalog dishes.
type Calculator struct{}

// NewCalculator creates a nutrient calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Aggregate implements outbound.NutrientCalculator.
func (c *Calculator) Aggregate(servings []outbound.DishServing) planning.NutrientVector {
	totals := make(planning.NutrientVector)
	for _, s := range servings {
		if s.Dish == nil || s.Servings <= 0 {
			continue
		}
		totals.AddScaled(s.Dish.Nutrients, float64(s.Servings))
	}
	return totals
}

// Achievement implements outbound.NutrientCalculator. Percentages are
// relative to the daily per-person reference scaled to the whole horizon
// and household. Nutrients without a positive reference report zero.
func (c *Calculator) Achievement(
	totals planning.NutrientVector,
	targets map[planning.NutrientKey]planning.NutrientTarget,
	days, people int,
) map[planning.NutrientKey]float64 {
	scale := float64(days * people)
	out := make(map[planning.NutrientKey]float64, len(targets))
	for key, target := range targets {
		ref := target.Reference() * scale
		if ref <= 0 {
			out[key] = 0
			continue
		}
		out[key] = totals[key] / ref * 100
	}
	return out
}
