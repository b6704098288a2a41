package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/ports/outbound"
	"github.com/alchemorsel/planner/internal/solver"
	apperrors "github.com/alchemorsel/planner/pkg/errors"
)

// Extractor converts a solved model or a fallback selection into a
// MultiDayPlan: cooking schedule, daily assignments, shopping list,
// achievement metrics, and warnings.
type Extractor struct {
	cfg        Config
	calculator outbound.NutrientCalculator
	logger     *zap.Logger
}

// NewExtractor creates a result extractor.
func NewExtractor(cfg Config, calculator outbound.NutrientCalculator, logger *zap.Logger) *Extractor {
	return &Extractor{cfg: cfg, calculator: calculator, logger: logger.Named("result-extractor")}
}

// FromSolution reads the decision variables of a usable solution back into
// domain events and assembles the plan. A solution that violates the plan
// invariants raises an extraction error: that indicates a modeling bug,
// not a bad request.
func (e *Extractor) FromSolution(
	pm *PlanModel,
	sol *solver.Solution,
	warnings []planning.Warning,
	degraded bool,
) (*planning.MultiDayPlan, error) {
	if !sol.Usable() {
		return nil, apperrors.NewExtractionError(
			fmt.Sprintf("solution status %s carries no point", sol.Status), nil)
	}

	binOn := func(idx int) bool { return sol.Values[idx] > 0.5 }
	intVal := func(idx int) int { return int(math.Round(sol.Values[idx])) }

	var events []planning.CookingEvent
	for key, cookIdx := range pm.Cook {
		if !binOn(cookIdx) {
			continue
		}
		dish := pm.Candidates.Dishes[key.Dish]
		qty := intVal(pm.Qty[key])
		if qty < dish.MinServings || qty > maxBatch(dish, pm.Req.People) {
			return nil, apperrors.NewExtractionError(
				fmt.Sprintf("cooking event %q day %d has %d servings outside [%d,%d]",
					dish.Name, key.Day, qty, dish.MinServings, maxBatch(dish, pm.Req.People)), nil)
		}
		events = append(events, planning.CookingEvent{
			DishID: dish.ID, DishName: dish.Name, Day: key.Day, Servings: qty,
		})
	}

	var consumption []planning.ConsumptionEvent
	for key, eatIdx := range pm.Eat {
		if !binOn(eatIdx) {
			continue
		}
		dish := pm.Candidates.Dishes[key.Dish]
		qty := intVal(pm.QtyEaten[key])
		if qty < 1 || qty > pm.Req.People {
			return nil, apperrors.NewExtractionError(
				fmt.Sprintf("consumption of %q at day %d %s has %d servings outside [1,%d]",
					dish.Name, key.Day, key.Slot, qty, pm.Req.People), nil)
		}
		if key.Day < key.CookDay || key.Day > key.CookDay+dish.StorageDays {
			return nil, apperrors.NewExtractionError(
				fmt.Sprintf("consumption of %q on day %d is outside the storage window of the day-%d batch",
					dish.Name, key.Day, key.CookDay), nil)
		}
		consumption = append(consumption, planning.ConsumptionEvent{
			DishID: dish.ID, CookDay: key.CookDay, Day: key.Day, Slot: key.Slot, Servings: qty,
		})
	}

	return e.Assemble(pm.Req, pm.Candidates, pm.Targets, events, consumption, warnings, degraded)
}

// Assemble builds the final plan from domain-level events. The fallback
// planner shares this path so solved and degraded plans satisfy the same
// invariants.
func (e *Extractor) Assemble(
	req *planning.PlanningRequest,
	candidates *CandidateSet,
	targets map[planning.NutrientKey]planning.NutrientTarget,
	events []planning.CookingEvent,
	consumption []planning.ConsumptionEvent,
	warnings []planning.Warning,
	degraded bool,
) (*planning.MultiDayPlan, error) {
	sortEvents(events, consumption)

	plan := &planning.MultiDayPlan{
		PlanID:          uuid.New(),
		HorizonDays:     req.HorizonDays,
		People:          req.People,
		CookingSchedule: events,
		Consumption:     consumption,
		Warnings:        warnings,
		Degraded:        degraded,
	}

	if err := plan.CheckConservation(); err != nil {
		return nil, apperrors.NewExtractionError("cooked servings do not match consumption", err)
	}

	plan.DailyAssignments = e.buildAssignments(req, candidates, consumption)
	plan.ShoppingList = e.buildShoppingList(req, candidates, events)

	servings := make([]outbound.DishServing, 0, len(consumption))
	for _, c := range consumption {
		servings = append(servings, outbound.DishServing{
			Dish: candidates.ByID[c.DishID], Servings: c.Servings,
		})
	}
	plan.NutrientTotals = e.calculator.Aggregate(servings)
	plan.Achievement = e.calculator.Achievement(plan.NutrientTotals, targets, req.HorizonDays, req.People)
	plan.Warnings = append(plan.Warnings, e.nutrientWarnings(plan.Achievement, targets)...)

	e.logger.Info("plan extracted",
		zap.String("plan_id", plan.PlanID.String()),
		zap.Int("cooking_events", len(events)),
		zap.Int("consumption_events", len(consumption)),
		zap.Int("warnings", len(plan.Warnings)),
		zap.Bool("degraded", degraded),
	)
	return plan, nil
}

func (e *Extractor) buildAssignments(
	req *planning.PlanningRequest,
	candidates *CandidateSet,
	consumption []planning.ConsumptionEvent,
) []planning.DailyAssignment {
	assignments := make([]planning.DailyAssignment, req.HorizonDays)
	for day := range assignments {
		assignments[day] = planning.DailyAssignment{
			Day:   day,
			Meals: make(map[planning.MealSlot][]planning.ServedDish),
		}
	}
	for _, c := range consumption {
		dish := candidates.ByID[c.DishID]
		assignments[c.Day].Meals[c.Slot] = append(assignments[c.Day].Meals[c.Slot], planning.ServedDish{
			DishID:   dish.ID,
			DishName: dish.Name,
			Category: dish.Category,
			Servings: c.Servings,
		})
	}
	return assignments
}

// buildShoppingList aggregates raw-ingredient demand across cooking
// events, subtracts owned quantities, and converts to display units.
func (e *Extractor) buildShoppingList(
	req *planning.PlanningRequest,
	candidates *CandidateSet,
	events []planning.CookingEvent,
) []planning.ShoppingItem {
	type demand struct {
		name   string
		amount float64
		unit   planning.MeasurementUnit // base unit: g, ml, or piece
	}
	needs := make(map[uuid.UUID]*demand)
	for _, ev := range events {
		dish := candidates.ByID[ev.DishID]
		for _, ing := range dish.Ingredients {
			amount, unit := toBaseUnit(ing.Amount*float64(ev.Servings), ing.Unit)
			if d, ok := needs[ing.ID]; ok {
				d.amount += amount
			} else {
				needs[ing.ID] = &demand{name: ing.Name, amount: amount, unit: unit}
			}
		}
	}

	for _, owned := range req.OwnedIngredients {
		d, ok := needs[owned.ID]
		if !ok {
			continue
		}
		amount, unit := toBaseUnit(owned.Amount, owned.Unit)
		if unit != d.unit {
			// Subtracting across unit families (piece against grams)
			// would corrupt the list; keep the full demand instead.
			e.logger.Warn("owned ingredient unit does not match demand, ignoring",
				zap.String("ingredient", d.name),
				zap.String("owned_unit", string(unit)),
				zap.String("demand_unit", string(d.unit)),
			)
			continue
		}
		d.amount -= amount
	}

	items := make([]planning.ShoppingItem, 0, len(needs))
	for id, d := range needs {
		if d.amount <= 0 {
			continue
		}
		amount, unit := toDisplayUnit(d.amount, d.unit)
		items = append(items, planning.ShoppingItem{
			IngredientID: id, Name: d.name, Amount: amount, Unit: unit,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// nutrientWarnings flags deficit-type nutrients below the warning
// threshold and cap-type nutrients above it. Range-type nutrients warn on
// both sides.
func (e *Extractor) nutrientWarnings(
	achievement map[planning.NutrientKey]float64,
	targets map[planning.NutrientKey]planning.NutrientTarget,
) []planning.Warning {
	keys := make([]planning.NutrientKey, 0, len(achievement))
	for key := range achievement {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var warnings []planning.Warning
	for _, key := range keys {
		percent := achievement[key]
		target := targets[key]
		switch target.Direction {
		case planning.PenaltyDeficit:
			if percent < e.cfg.WarnDeficitBelow {
				warnings = append(warnings, deficitWarning(key, percent))
			}
		case planning.PenaltyCap:
			if percent > e.cfg.WarnCapAbove {
				warnings = append(warnings, exceededWarning(key, percent))
			}
		case planning.PenaltyRange:
			if percent < e.cfg.WarnDeficitBelow {
				warnings = append(warnings, deficitWarning(key, percent))
			}
			if target.Min > 0 && percent*target.Min/nonZero(target.Max) > e.cfg.WarnCapAbove {
				warnings = append(warnings, exceededWarning(key, percent))
			}
		}
	}
	return warnings
}

func deficitWarning(key planning.NutrientKey, percent float64) planning.Warning {
	return planning.Warning{
		Code:    planning.WarnNutrientDeficit,
		Message: fmt.Sprintf("%s achievement is %.0f%% of target", key, percent),
	}
}

func exceededWarning(key planning.NutrientKey, percent float64) planning.Warning {
	return planning.Warning{
		Code:    planning.WarnNutrientExceeded,
		Message: fmt.Sprintf("%s intake is %.0f%% of its limit", key, percent),
	}
}

func sortEvents(events []planning.CookingEvent, consumption []planning.ConsumptionEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Day != events[j].Day {
			return events[i].Day < events[j].Day
		}
		return events[i].DishName < events[j].DishName
	})
	sort.Slice(consumption, func(i, j int) bool {
		if consumption[i].Day != consumption[j].Day {
			return consumption[i].Day < consumption[j].Day
		}
		if consumption[i].Slot != consumption[j].Slot {
			return consumption[i].Slot < consumption[j].Slot
		}
		return consumption[i].CookDay < consumption[j].CookDay
	})
}

// toBaseUnit normalizes kg to g and l to ml so demand aggregates cleanly.
func toBaseUnit(amount float64, unit planning.MeasurementUnit) (float64, planning.MeasurementUnit) {
	switch unit {
	case planning.UnitKilogram:
		return amount * 1000, planning.UnitGram
	case planning.UnitLiter:
		return amount * 1000, planning.UnitMilliliter
	default:
		return amount, unit
	}
}

// toDisplayUnit promotes large gram/milliliter amounts to kg/l.
func toDisplayUnit(amount float64, unit planning.MeasurementUnit) (float64, planning.MeasurementUnit) {
	switch unit {
	case planning.UnitGram:
		if amount >= 1000 {
			return amount / 1000, planning.UnitKilogram
		}
	case planning.UnitMilliliter:
		if amount >= 1000 {
			return amount / 1000, planning.UnitLiter
		}
	}
	return amount, unit
}
