// Package optimizer contains the meal-plan optimization pipeline: nutrient
// target resolution, catalog filtering, model construction, objective
// composition, result extraction, and the per-day fallback planner.
package optimizer

import (
	"time"

	"github.com/alchemorsel/planner/internal/domain/planning"
)

// Config is the immutable tuning surface of the optimizer. It is resolved
// once at construction from the application configuration and passed in
// explicitly; the optimizer never reads process-wide state.
type Config struct {
	// SolveTimeout bounds the joint solve wall clock.
	SolveTimeout time.Duration
	// RelativeGap is the acceptable optimality gap.
	RelativeGap float64

	// DeficitPenalty applies to intake below a deficit-type target. It is
	// kept strictly larger than every surplus-side coefficient so adequacy
	// always dominates overshoot.
	DeficitPenalty float64
	// CapPenalty applies to intake above a capped nutrient's limit.
	CapPenalty float64
	// RangePenalty applies on both sides outside a range-type nutrient's
	// [min, max]; steeper than the cap penalty.
	RangePenalty float64

	// BatchWeights price each cooking event per batch-cooking level;
	// higher levels reward fewer, larger batches.
	BatchWeights map[planning.BatchCookingLevel]float64

	// PreferenceBonus is the per-variable reward for preferred/favorite
	// dishes and preferred/owned ingredients. BonusBudget caps the total
	// reachable bonus so preferences can never outweigh one unit of
	// normalized nutrient deviation.
	PreferenceBonus float64
	BonusBudget     float64

	// Warning thresholds, in achievement percent.
	WarnDeficitBelow float64
	WarnCapAbove     float64

	// DefaultTargets are the configured daily per-person targets.
	DefaultTargets map[planning.NutrientKey]planning.NutrientTarget
}

// DefaultConfig returns the stock tuning used when no configuration file
// overrides it.
func DefaultConfig() Config {
	return Config{
		SolveTimeout:   30 * time.Second,
		RelativeGap:    0.05,
		DeficitPenalty: 12.0,
		CapPenalty:     6.0,
		RangePenalty:   10.0,
		BatchWeights: map[planning.BatchCookingLevel]float64{
			planning.BatchLow:    0.05,
			planning.BatchMedium: 0.20,
			planning.BatchHigh:   0.60,
		},
		PreferenceBonus:  0.10,
		BonusBudget:      0.90,
		WarnDeficitBelow: 80,
		WarnCapAbove:     130,
		DefaultTargets:   DefaultTargets(),
	}
}

// DefaultTargets returns the stock daily per-person nutrient targets.
// Energy units are kcal; macronutrients and salt are grams; minerals and
// vitamins use their customary mg/ug reference units.
func DefaultTargets() map[planning.NutrientKey]planning.NutrientTarget {
	return map[planning.NutrientKey]planning.NutrientTarget{
		planning.NutrientEnergy:       {Min: 1800, Max: 2200, Weight: 1.0, Direction: planning.PenaltyRange},
		planning.NutrientProtein:      {Min: 60, Weight: 1.0, Direction: planning.PenaltyDeficit},
		planning.NutrientFat:          {Min: 40, Max: 70, Weight: 0.8, Direction: planning.PenaltyRange},
		planning.NutrientCarbohydrate: {Min: 225, Max: 325, Weight: 0.6, Direction: planning.PenaltyRange},
		planning.NutrientFiber:        {Min: 21, Weight: 0.8, Direction: planning.PenaltyDeficit},
		planning.NutrientSalt:         {Max: 7.5, Weight: 1.0, Direction: planning.PenaltyCap},
		planning.NutrientCalcium:      {Min: 650, Weight: 0.7, Direction: planning.PenaltyDeficit},
		planning.NutrientIron:         {Min: 7.5, Weight: 0.7, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminA:     {Min: 850, Weight: 0.5, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminC:     {Min: 100, Weight: 0.6, Direction: planning.PenaltyDeficit},

		planning.NutrientVitaminD:    {Min: 8.5, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminE:    {Min: 6, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminK:    {Min: 150, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminB1:   {Min: 1.2, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminB2:   {Min: 1.4, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminB6:   {Min: 1.4, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientVitaminB12:  {Min: 2.4, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientFolate:      {Min: 240, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientMagnesium:   {Min: 340, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientPotassium:   {Min: 2500, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientZinc:        {Min: 10, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientPhosphorus:  {Min: 800, Weight: 0.4, Direction: planning.PenaltyDeficit},
		planning.NutrientCholesterol: {Max: 300, Weight: 0.5, Direction: planning.PenaltyCap},
	}
}
