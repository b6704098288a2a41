package optimizer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/solver"
)

// FallbackPlanner produces a plan when the joint multi-day solve fails or
// times out. It decomposes the horizon into independent single-day solves
// with the same category constraints and per-day targets but no batch
// carry-over; days that still cannot be solved fall through to a greedy
// nearest-target selection. The fallback never fails: it always returns a
// plan, flagged degraded by the caller.
type FallbackPlanner struct {
	cfg      Config
	builder  *ModelBuilder
	composer *ObjectiveComposer
	registry *solver.Registry
	logger   *zap.Logger
}

// NewFallbackPlanner creates a fallback planner sharing the model builder,
// objective composer, and solver registry of the joint path.
func NewFallbackPlanner(
	cfg Config,
	builder *ModelBuilder,
	composer *ObjectiveComposer,
	registry *solver.Registry,
	logger *zap.Logger,
) *FallbackPlanner {
	return &FallbackPlanner{
		cfg:      cfg,
		builder:  builder,
		composer: composer,
		registry: registry,
		logger:   logger.Named("fallback-planner"),
	}
}

// Plan runs the per-day decomposition. Returned events and consumption are
// already in horizon-day coordinates and conserve servings within each day,
// so they feed straight into Extractor.Assemble.
func (f *FallbackPlanner) Plan(
	ctx context.Context,
	req *planning.PlanningRequest,
	candidates *CandidateSet,
	targets map[planning.NutrientKey]planning.NutrientTarget,
) ([]planning.CookingEvent, []planning.ConsumptionEvent, []planning.Warning) {
	perDayTimeout := f.cfg.SolveTimeout / time.Duration(req.HorizonDays)
	if perDayTimeout < time.Second {
		perDayTimeout = time.Second
	}

	var (
		events      []planning.CookingEvent
		consumption []planning.ConsumptionEvent
		warnings    []planning.Warning
		used        = make(map[uuid.UUID]bool)
		lastDay     = make(map[uuid.UUID]int)
	)

	requiredByDay := spreadRequiredDishes(req)

	for day := 0; day < req.HorizonDays; day++ {
		dayReq := f.dayRequest(req, requiredByDay[day])
		dayCandidates := f.dayCandidates(req, candidates, used, lastDay, day)

		dayEvents, dayConsumption, ok := f.solveDay(ctx, dayReq, dayCandidates, targets, perDayTimeout, day)
		if !ok {
			dayEvents, dayConsumption = f.greedyDay(dayReq, dayCandidates, targets, day)
			warnings = append(warnings, planning.Warning{
				Code:    planning.WarnGreedyDay,
				Message: fmt.Sprintf("day %d was planned greedily after the single-day solve failed", day),
			})
		}

		for _, ev := range dayEvents {
			used[ev.DishID] = true
			lastDay[ev.DishID] = day
		}
		events = append(events, dayEvents...)
		consumption = append(consumption, dayConsumption...)
	}

	f.logger.Info("fallback plan assembled",
		zap.Int("cooking_events", len(events)),
		zap.Int("greedy_days", len(warnings)),
	)
	return events, consumption, warnings
}

// dayRequest derives a single-day request. Required dishes are spread over
// the horizon by the caller so a single day never has to host all of them.
func (f *FallbackPlanner) dayRequest(req *planning.PlanningRequest, required []uuid.UUID) *planning.PlanningRequest {
	day := req.Clone()
	day.HorizonDays = 1
	day.RequiredDishIDs = required
	// Within one day batch carry-over cannot exist, so the level only
	// shifts cost between identical plans.
	day.BatchCookingLevel = planning.BatchLow
	return day
}

// dayCandidates narrows the shared candidate set per variety level: strict
// drops every dish already cooked, moderate drops dishes cooked the day
// before. When strict exhausts a category the full category returns, since
// repeating a dish beats serving nothing.
func (f *FallbackPlanner) dayCandidates(
	req *planning.PlanningRequest,
	candidates *CandidateSet,
	used map[uuid.UUID]bool,
	lastDay map[uuid.UUID]int,
	day int,
) *CandidateSet {
	if req.VarietyLevel == planning.VarietyRelaxed || day == 0 {
		return candidates
	}

	blocked := func(d *planning.Dish) bool {
		switch req.VarietyLevel {
		case planning.VarietyStrict:
			return used[d.ID]
		case planning.VarietyModerate:
			last, ok := lastDay[d.ID]
			return ok && last == day-1
		default:
			return false
		}
	}

	set := &CandidateSet{
		ByCategory: make(map[planning.DishCategory][]*planning.Dish),
		ByID:       make(map[uuid.UUID]*planning.Dish),
	}
	for _, dish := range candidates.Dishes {
		if blocked(dish) {
			continue
		}
		set.Dishes = append(set.Dishes, dish)
		set.ByCategory[dish.Category] = append(set.ByCategory[dish.Category], dish)
		set.ByID[dish.ID] = dish
	}

	for cat := range req.RequiredCategories() {
		if len(set.ByCategory[cat]) > 0 {
			continue
		}
		for _, dish := range candidates.ByCategory[cat] {
			if set.ByID[dish.ID] == nil {
				set.Dishes = append(set.Dishes, dish)
				set.ByCategory[cat] = append(set.ByCategory[cat], dish)
				set.ByID[dish.ID] = dish
			}
		}
	}
	return set
}

// solveDay builds and solves the single-day model. Any failure reports
// !ok and hands the day to the greedy path.
func (f *FallbackPlanner) solveDay(
	ctx context.Context,
	dayReq *planning.PlanningRequest,
	candidates *CandidateSet,
	targets map[planning.NutrientKey]planning.NutrientTarget,
	timeout time.Duration,
	day int,
) ([]planning.CookingEvent, []planning.ConsumptionEvent, bool) {
	pm, err := f.builder.Build(dayReq, candidates, targets)
	if err != nil {
		f.logger.Warn("single-day model build failed", zap.Int("day", day), zap.Error(err))
		return nil, nil, false
	}
	f.composer.Compose(pm)

	sol, err := f.registry.Solve(ctx, pm.Model, solver.Options{
		Timeout:     timeout,
		RelativeGap: f.cfg.RelativeGap,
	})
	if err != nil || !sol.Usable() {
		f.logger.Warn("single-day solve failed", zap.Int("day", day), zap.Error(err))
		return nil, nil, false
	}

	var events []planning.CookingEvent
	for key, idx := range pm.Cook {
		if sol.Values[idx] < 0.5 {
			continue
		}
		dish := candidates.Dishes[key.Dish]
		events = append(events, planning.CookingEvent{
			DishID:   dish.ID,
			DishName: dish.Name,
			Day:      day,
			Servings: int(math.Round(sol.Values[pm.Qty[key]])),
		})
	}
	var consumption []planning.ConsumptionEvent
	for key, idx := range pm.Eat {
		if sol.Values[idx] < 0.5 {
			continue
		}
		dish := candidates.Dishes[key.Dish]
		consumption = append(consumption, planning.ConsumptionEvent{
			DishID:   dish.ID,
			CookDay:  day,
			Day:      day,
			Slot:     key.Slot,
			Servings: int(math.Round(sol.Values[pm.QtyEaten[key]])),
		})
	}
	return events, consumption, true
}

// greedyDay fills each enabled slot's category minimums with the dishes
// whose nutrients close the largest share of the remaining per-day gap.
// Every pick cooks exactly People servings and serves them the same day,
// so conservation holds by construction.
func (f *FallbackPlanner) greedyDay(
	dayReq *planning.PlanningRequest,
	candidates *CandidateSet,
	targets map[planning.NutrientKey]planning.NutrientTarget,
	day int,
) ([]planning.CookingEvent, []planning.ConsumptionEvent) {
	remaining := make(planning.NutrientVector, len(targets))
	for key, t := range targets {
		if t.Direction != planning.PenaltyCap {
			remaining[key] = t.Reference()
		}
	}

	var events []planning.CookingEvent
	var consumption []planning.ConsumptionEvent
	picked := make(map[uuid.UUID]bool)

	for _, slot := range dayReq.EnabledSlots() {
		for cat, bounds := range dayReq.Slots[slot].Categories {
			for n := 0; n < bounds.Min; n++ {
				dish := f.bestFit(candidates.ByCategory[cat], slot, picked, remaining, targets)
				if dish == nil {
					break
				}
				picked[dish.ID] = true
				events = append(events, planning.CookingEvent{
					DishID: dish.ID, DishName: dish.Name, Day: day, Servings: dayReq.People,
				})
				consumption = append(consumption, planning.ConsumptionEvent{
					DishID: dish.ID, CookDay: day, Day: day, Slot: slot, Servings: dayReq.People,
				})
				for key, amount := range dish.Nutrients {
					if left, ok := remaining[key]; ok {
						remaining[key] = math.Max(0, left-amount)
					}
				}
			}
		}
	}
	return events, consumption
}

// bestFit scores one serving of each eligible dish by the fraction of the
// remaining per-nutrient gap it closes, weighted by the target weight.
func (f *FallbackPlanner) bestFit(
	pool []*planning.Dish,
	slot planning.MealSlot,
	picked map[uuid.UUID]bool,
	remaining planning.NutrientVector,
	targets map[planning.NutrientKey]planning.NutrientTarget,
) *planning.Dish {
	var best *planning.Dish
	bestScore := -1.0
	for _, dish := range pool {
		if picked[dish.ID] || !dish.AllowsSlot(slot) {
			continue
		}
		score := 0.0
		for key, amount := range dish.Nutrients {
			target, ok := targets[key]
			if !ok || target.Direction == planning.PenaltyCap {
				continue
			}
			if gap := remaining[key]; gap > 0 {
				score += target.Weight * math.Min(amount, gap) / nonZero(target.Reference())
			}
		}
		if score > bestScore {
			bestScore = score
			best = dish
		}
	}
	return best
}

// spreadRequiredDishes assigns each required dish to one day round-robin so
// the per-day solves share the burden of the horizon-wide requirement.
func spreadRequiredDishes(req *planning.PlanningRequest) [][]uuid.UUID {
	byDay := make([][]uuid.UUID, req.HorizonDays)
	for i, id := range req.RequiredDishIDs {
		day := i % req.HorizonDays
		byDay[day] = append(byDay[day], id)
	}
	return byDay
}
