package optimizer

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
)

// ObjectiveComposer assigns the weighted penalty/bonus costs to a built
// model. The model is minimized, so penalties are positive costs and
// bonuses negative ones.
type ObjectiveComposer struct {
	cfg    Config
	logger *zap.Logger
}

// NewObjectiveComposer creates an objective composer with an explicit
// immutable configuration.
func NewObjectiveComposer(cfg Config, logger *zap.Logger) *ObjectiveComposer {
	return &ObjectiveComposer{cfg: cfg, logger: logger.Named("objective-composer")}
}

// Compose prices the model:
//   - nutrient deviations, normalized by the target reference so a full
//     target miss costs weight x direction coefficient regardless of units;
//   - cooking events, weighted by the batch-cooking level so high levels
//     reward fewer, larger batches;
//   - bounded bonuses for preferred/favorite dishes and preferred/owned
//     ingredients, capped by the bonus budget so they can never outweigh
//     nutrient adequacy.
func (o *ObjectiveComposer) Compose(pm *PlanModel) {
	o.priceDeviations(pm)
	o.priceCookingEvents(pm)
	o.priceBonuses(pm)
}

func (o *ObjectiveComposer) priceDeviations(pm *PlanModel) {
	for dk, idx := range pm.Under {
		target := pm.Targets[dk.Nutrient]
		coeff := o.cfg.DeficitPenalty
		if target.Direction == planning.PenaltyRange {
			coeff = o.cfg.RangePenalty
		}
		pm.Model.SetCost(idx, target.Weight*coeff/nonZero(target.Reference()))
	}
	for dk, idx := range pm.Over {
		target := pm.Targets[dk.Nutrient]
		coeff := o.cfg.CapPenalty
		if target.Direction == planning.PenaltyRange {
			coeff = o.cfg.RangePenalty
		}
		ref := target.Max
		if ref == 0 {
			ref = target.Reference()
		}
		pm.Model.SetCost(idx, target.Weight*coeff/nonZero(ref))
	}
}

func (o *ObjectiveComposer) priceCookingEvents(pm *PlanModel) {
	weight := o.cfg.BatchWeights[pm.Req.BatchCookingLevel]
	for _, idx := range pm.Cook {
		pm.Model.AddCost(idx, weight)
	}
}

// priceBonuses rewards cooking preferred dishes and dishes that use
// preferred or owned ingredients. The per-variable bonus shrinks when many
// dishes are eligible so the total reachable bonus never exceeds the
// budget.
func (o *ObjectiveComposer) priceBonuses(pm *PlanModel) {
	preferredDishes := make(map[int]bool)
	for _, id := range pm.Req.PreferredDishIDs {
		if dish, ok := pm.Candidates.ByID[id]; ok {
			preferredDishes[pm.dishIndex(dish)] = true
		}
	}

	ingredientIDs := make(map[int]bool)
	wanted := make(map[uuid.UUID]bool, len(pm.Req.PreferredIngredientIDs)+len(pm.Req.OwnedIngredients))
	for _, id := range pm.Req.PreferredIngredientIDs {
		wanted[id] = true
	}
	for _, owned := range pm.Req.OwnedIngredients {
		wanted[owned.ID] = true
	}
	for di, dish := range pm.Candidates.Dishes {
		if dish.ContainsIngredient(wanted) {
			ingredientIDs[di] = true
		}
	}

	eligible := make(map[int]bool, len(preferredDishes)+len(ingredientIDs))
	for di := range preferredDishes {
		eligible[di] = true
	}
	for di := range ingredientIDs {
		eligible[di] = true
	}
	if len(eligible) == 0 {
		return
	}

	// Each eligible dish can cook up to HorizonDays times under relaxed
	// variety, so the cap divides the budget by the worst case.
	slots := len(eligible) * pm.Req.HorizonDays
	bonus := o.cfg.PreferenceBonus
	if capped := o.cfg.BonusBudget / float64(slots); capped < bonus {
		bonus = capped
	}
	o.logger.Debug("preference bonus priced",
		zap.Int("eligible_dishes", len(eligible)),
		zap.Float64("bonus", bonus),
	)

	for key, idx := range pm.Cook {
		if eligible[key.Dish] {
			pm.Model.AddCost(idx, -bonus)
		}
	}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
