package optimizer

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/solver"
	apperrors "github.com/alchemorsel/planner/pkg/errors"
)

// CookKey indexes the cook/quantity variables of one (dish, day) pair.
// Dish is the index into CandidateSet.Dishes.
type CookKey struct {
	Dish int
	Day  int
}

// EatKey indexes the consumption variables of one
// (dish, cook day, consume day, slot) tuple.
type EatKey struct {
	Dish    int
	CookDay int
	Day     int
	Slot    planning.MealSlot
}

// DevKey indexes the deviation variables of one (day, nutrient) pair.
type DevKey struct {
	Day      int
	Nutrient planning.NutrientKey
}

// PlanModel is a built MILP instance plus the index maps the extractor
// needs to read a solution back into domain terms.
type PlanModel struct {
	Req        *planning.PlanningRequest
	Candidates *CandidateSet
	Targets    map[planning.NutrientKey]planning.NutrientTarget

	Model *solver.Model

	// Cook[d,day] is binary: dish d is cooked on day.
	Cook map[CookKey]int
	// Qty[d,day] is the integer servings produced by that cooking event.
	Qty map[CookKey]int
	// Eat[d,c,day,slot] is binary: a batch of d cooked on c is served at
	// (day, slot).
	Eat map[EatKey]int
	// QtyEaten[d,c,day,slot] is the integer servings consumed there.
	QtyEaten map[EatKey]int
	// Under/Over are the signed deviation parts per (day, nutrient).
	Under map[DevKey]int
	Over  map[DevKey]int
}

// ModelBuilder constructs the decision variables and constraints for a
// planning horizon.
type ModelBuilder struct {
	cfg    Config
	logger *zap.Logger
}

// NewModelBuilder creates a model builder with an explicit immutable
// configuration.
func NewModelBuilder(cfg Config, logger *zap.Logger) *ModelBuilder {
	return &ModelBuilder{cfg: cfg, logger: logger.Named("model-builder")}
}

// Build constructs the full model for the request over the candidate set.
// The conditional "produce only if cooked" / "consume only if flagged"
// semantics are expressed as explicit linear inequalities whose upper-bound
// constants derive from MaxServings x People.
func (b *ModelBuilder) Build(
	req *planning.PlanningRequest,
	candidates *CandidateSet,
	targets map[planning.NutrientKey]planning.NutrientTarget,
) (*PlanModel, error) {
	for _, dish := range candidates.Dishes {
		if err := dish.Validate(); err != nil {
			return nil, apperrors.NewModelBuildError(
				fmt.Sprintf("catalog entry %q is invalid", dish.Name), err)
		}
	}
	if len(candidates.Dishes) == 0 {
		return nil, apperrors.NewModelBuildError("candidate set is empty", nil)
	}

	pm := &PlanModel{
		Req:        req,
		Candidates: candidates,
		Targets:    targets,
		Model:      solver.NewModel(),
		Cook:       make(map[CookKey]int),
		Qty:        make(map[CookKey]int),
		Eat:        make(map[EatKey]int),
		QtyEaten:   make(map[EatKey]int),
		Under:      make(map[DevKey]int),
		Over:       make(map[DevKey]int),
	}

	b.addCookingVariables(pm)
	b.addConsumptionVariables(pm)
	b.linkCookingQuantities(pm)     // C1
	b.addConservation(pm)           // C2
	b.linkConsumptionQuantities(pm) // C3
	b.addNutrientDeviations(pm)     // C4
	if err := b.addCategoryComposition(pm); err != nil { // C5
		return nil, err
	}
	b.addVarietyPolicy(pm)  // C6
	b.addRequiredDishes(pm) // C7

	b.logger.Debug("model built",
		zap.Int("dishes", len(candidates.Dishes)),
		zap.Int("days", req.HorizonDays),
		zap.Int("variables", pm.Model.NumVariables()),
		zap.Int("constraints", pm.Model.NumConstraints()),
	)
	return pm, nil
}

// maxBatch is the documented upper-bound constant for one cooking event:
// the dish's per-event maximum times the household multiplier.
func maxBatch(dish *planning.Dish, people int) int {
	return dish.MaxServings * people
}

func (b *ModelBuilder) addCookingVariables(pm *PlanModel) {
	for di, dish := range pm.Candidates.Dishes {
		for day := 0; day < pm.Req.HorizonDays; day++ {
			key := CookKey{Dish: di, Day: day}
			pm.Cook[key] = pm.Model.AddVariable(
				fmt.Sprintf("cook[%s,%d]", dish.Name, day), solver.Binary, 0, 1)
			pm.Qty[key] = pm.Model.AddVariable(
				fmt.Sprintf("qty[%s,%d]", dish.Name, day),
				solver.Integer, 0, float64(maxBatch(dish, pm.Req.People)))
		}
	}
}

// addConsumptionVariables creates consume flags and quantities only where
// the storage window and slot rules allow: consume day within
// [cook day, cook day + storage days], slot enabled and allowed for the
// dish.
func (b *ModelBuilder) addConsumptionVariables(pm *PlanModel) {
	slots := pm.Req.EnabledSlots()
	for di, dish := range pm.Candidates.Dishes {
		for cookDay := 0; cookDay < pm.Req.HorizonDays; cookDay++ {
			lastDay := cookDay + dish.StorageDays
			if lastDay > pm.Req.HorizonDays-1 {
				lastDay = pm.Req.HorizonDays - 1
			}
			for day := cookDay; day <= lastDay; day++ {
				for _, slot := range slots {
					if !dish.AllowsSlot(slot) {
						continue
					}
					key := EatKey{Dish: di, CookDay: cookDay, Day: day, Slot: slot}
					pm.Eat[key] = pm.Model.AddVariable(
						fmt.Sprintf("eat[%s,%d,%d,%s]", dish.Name, cookDay, day, slot),
						solver.Binary, 0, 1)
					pm.QtyEaten[key] = pm.Model.AddVariable(
						fmt.Sprintf("eatqty[%s,%d,%d,%s]", dish.Name, cookDay, day, slot),
						solver.Integer, 0, float64(pm.Req.People))
				}
			}
		}
	}
}

// linkCookingQuantities adds C1: servings are produced only when the dish
// is cooked, and then within the dish's per-event bounds.
func (b *ModelBuilder) linkCookingQuantities(pm *PlanModel) {
	for di, dish := range pm.Candidates.Dishes {
		for day := 0; day < pm.Req.HorizonDays; day++ {
			key := CookKey{Dish: di, Day: day}
			cook, qty := pm.Cook[key], pm.Qty[key]
			pm.Model.AddLessEqual(
				fmt.Sprintf("c1-max[%s,%d]", dish.Name, day),
				map[int]float64{qty: 1, cook: -float64(maxBatch(dish, pm.Req.People))}, 0)
			pm.Model.AddGreaterEqual(
				fmt.Sprintf("c1-min[%s,%d]", dish.Name, day),
				map[int]float64{qty: 1, cook: -float64(dish.MinServings)}, 0)
		}
	}
}

// addConservation adds C2: everything cooked is consumed within the
// storage window, with no shortfall and no waste. The equality is strict
// even near the horizon tail, so a late batch whose minimum cannot be
// eaten in the remaining days is infeasible and never selected.
func (b *ModelBuilder) addConservation(pm *PlanModel) {
	for di, dish := range pm.Candidates.Dishes {
		for cookDay := 0; cookDay < pm.Req.HorizonDays; cookDay++ {
			coeffs := map[int]float64{pm.Qty[CookKey{Dish: di, Day: cookDay}]: -1}
			for key, idx := range pm.QtyEaten {
				if key.Dish == di && key.CookDay == cookDay {
					coeffs[idx] = 1
				}
			}
			pm.Model.AddEquality(
				fmt.Sprintf("c2-conserve[%s,%d]", dish.Name, cookDay), coeffs, 0)
		}
	}
}

// linkConsumptionQuantities adds C3: servings flow only through flagged
// consumption events, at least one and at most one per person.
func (b *ModelBuilder) linkConsumptionQuantities(pm *PlanModel) {
	for key, eat := range pm.Eat {
		qty := pm.QtyEaten[key]
		name := pm.Candidates.Dishes[key.Dish].Name
		pm.Model.AddLessEqual(
			fmt.Sprintf("c3-max[%s,%d,%d,%s]", name, key.CookDay, key.Day, key.Slot),
			map[int]float64{qty: 1, eat: -float64(pm.Req.People)}, 0)
		pm.Model.AddGreaterEqual(
			fmt.Sprintf("c3-min[%s,%d,%d,%s]", name, key.CookDay, key.Day, key.Slot),
			map[int]float64{qty: 1, eat: -1}, 0)
	}
}

// addNutrientDeviations adds C4: per (day, active nutrient), the per-person
// intake feeds signed deviation variables. Deficit-type nutrients get an
// under part only, cap-type an over part only, range-type both.
func (b *ModelBuilder) addNutrientDeviations(pm *PlanModel) {
	people := float64(pm.Req.People)
	for day := 0; day < pm.Req.HorizonDays; day++ {
		for nutrient, target := range pm.Targets {
			coeffs := make(map[int]float64)
			for key, idx := range pm.QtyEaten {
				if key.Day != day {
					continue
				}
				amount := pm.Candidates.Dishes[key.Dish].Nutrients[nutrient]
				if amount == 0 {
					continue
				}
				coeffs[idx] = amount / people
			}

			dk := DevKey{Day: day, Nutrient: nutrient}
			switch target.Direction {
			case planning.PenaltyDeficit:
				under := pm.Model.AddVariable(
					fmt.Sprintf("under[%d,%s]", day, nutrient),
					solver.Continuous, 0, target.Min)
				pm.Under[dk] = under
				low := cloneCoeffs(coeffs)
				low[under] = 1
				pm.Model.AddGreaterEqual(
					fmt.Sprintf("c4-min[%d,%s]", day, nutrient), low, target.Min)
			case planning.PenaltyCap:
				over := pm.Model.AddVariable(
					fmt.Sprintf("over[%d,%s]", day, nutrient),
					solver.Continuous, 0, math.Inf(1))
				pm.Over[dk] = over
				high := cloneCoeffs(coeffs)
				high[over] = -1
				pm.Model.AddLessEqual(
					fmt.Sprintf("c4-max[%d,%s]", day, nutrient), high, target.Max)
			case planning.PenaltyRange:
				under := pm.Model.AddVariable(
					fmt.Sprintf("under[%d,%s]", day, nutrient),
					solver.Continuous, 0, target.Min)
				over := pm.Model.AddVariable(
					fmt.Sprintf("over[%d,%s]", day, nutrient),
					solver.Continuous, 0, math.Inf(1))
				pm.Under[dk] = under
				pm.Over[dk] = over
				low := cloneCoeffs(coeffs)
				low[under] = 1
				pm.Model.AddGreaterEqual(
					fmt.Sprintf("c4-min[%d,%s]", day, nutrient), low, target.Min)
				high := cloneCoeffs(coeffs)
				high[over] = -1
				pm.Model.AddLessEqual(
					fmt.Sprintf("c4-max[%d,%s]", day, nutrient), high, target.Max)
			}
		}
	}
}

// addCategoryComposition adds C5 plus the single-batch rule. Serving a
// dish at a (day, slot) from at most one batch keeps the category rows
// exact distinct-dish counts.
func (b *ModelBuilder) addCategoryComposition(pm *PlanModel) error {
	slots := pm.Req.EnabledSlots()

	for di, dish := range pm.Candidates.Dishes {
		for day := 0; day < pm.Req.HorizonDays; day++ {
			for _, slot := range slots {
				coeffs := make(map[int]float64)
				for key, idx := range pm.Eat {
					if key.Dish == di && key.Day == day && key.Slot == slot {
						coeffs[idx] = 1
					}
				}
				if len(coeffs) > 1 {
					pm.Model.AddLessEqual(
						fmt.Sprintf("single-batch[%s,%d,%s]", dish.Name, day, slot), coeffs, 1)
				}
			}
		}
	}

	for day := 0; day < pm.Req.HorizonDays; day++ {
		for _, slot := range slots {
			for cat, bounds := range pm.Req.Slots[slot].Categories {
				coeffs := make(map[int]float64)
				for key, idx := range pm.Eat {
					if key.Day == day && key.Slot == slot &&
						pm.Candidates.Dishes[key.Dish].Category == cat {
						coeffs[idx] = 1
					}
				}
				if len(coeffs) == 0 {
					if bounds.Min > 0 {
						return apperrors.NewModelBuildError(
							fmt.Sprintf("slot %s requires %d %q dishes but no candidate is allowed there", slot, bounds.Min, cat), nil)
					}
					continue
				}
				pm.Model.AddConstraint(
					fmt.Sprintf("c5[%d,%s,%s]", day, slot, cat),
					coeffs, float64(bounds.Min), float64(bounds.Max))
			}
		}
	}
	return nil
}

// addVarietyPolicy adds C6. Strict: each dish cooks at most once across
// the horizon. Moderate: the same dish is not eaten in the same slot on
// consecutive days. Relaxed: no rows.
func (b *ModelBuilder) addVarietyPolicy(pm *PlanModel) {
	switch pm.Req.VarietyLevel {
	case planning.VarietyStrict:
		for di, dish := range pm.Candidates.Dishes {
			coeffs := make(map[int]float64)
			for day := 0; day < pm.Req.HorizonDays; day++ {
				coeffs[pm.Cook[CookKey{Dish: di, Day: day}]] = 1
			}
			pm.Model.AddLessEqual(
				fmt.Sprintf("c6-strict[%s]", dish.Name), coeffs, 1)
		}
	case planning.VarietyModerate:
		for di, dish := range pm.Candidates.Dishes {
			for _, slot := range pm.Req.EnabledSlots() {
				for day := 0; day < pm.Req.HorizonDays-1; day++ {
					coeffs := make(map[int]float64)
					for key, idx := range pm.Eat {
						if key.Dish == di && key.Slot == slot &&
							(key.Day == day || key.Day == day+1) {
							coeffs[idx] = 1
						}
					}
					if len(coeffs) > 1 {
						pm.Model.AddLessEqual(
							fmt.Sprintf("c6-moderate[%s,%s,%d]", dish.Name, slot, day), coeffs, 1)
					}
				}
			}
		}
	}
}

// addRequiredDishes adds C7: every required dish has at least one cooking
// event.
func (b *ModelBuilder) addRequiredDishes(pm *PlanModel) {
	for _, id := range pm.Req.RequiredDishIDs {
		dish, ok := pm.Candidates.ByID[id]
		if !ok {
			// The filter guarantees required dishes survive; reaching
			// here is a builder defect surfaced at solve time instead.
			continue
		}
		di := pm.dishIndex(dish)
		coeffs := make(map[int]float64)
		for day := 0; day < pm.Req.HorizonDays; day++ {
			coeffs[pm.Cook[CookKey{Dish: di, Day: day}]] = 1
		}
		pm.Model.AddGreaterEqual(
			fmt.Sprintf("c7-required[%s]", dish.Name), coeffs, 1)
	}
}

func (pm *PlanModel) dishIndex(dish *planning.Dish) int {
	for i, d := range pm.Candidates.Dishes {
		if d.ID == dish.ID {
			return i
		}
	}
	return -1
}

func cloneCoeffs(in map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
