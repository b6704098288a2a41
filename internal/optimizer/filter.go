package optimizer

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	apperrors "github.com/alchemorsel/planner/pkg/errors"
)

// CandidateSet is the filtered catalog a model is built from.
type CandidateSet struct {
	Dishes     []*planning.Dish
	ByCategory map[planning.DishCategory][]*planning.Dish
	ByID       map[uuid.UUID]*planning.Dish
}

// CatalogFilter removes dishes that violate allergen and exclusion rules.
// It is a pure function of (catalog, request): same inputs always yield
// the same candidate set.
type CatalogFilter struct {
	logger *zap.Logger
}

// NewCatalogFilter creates a catalog filter.
func NewCatalogFilter(logger *zap.Logger) *CatalogFilter {
	return &CatalogFilter{logger: logger.Named("catalog-filter")}
}

// Apply filters the catalog and fails fast with a configuration error when
// the remaining candidates cannot satisfy the request. The checks run
// before any model construction.
func (f *CatalogFilter) Apply(catalog []*planning.Dish, req *planning.PlanningRequest) (*CandidateSet, error) {
	excludedAllergens := make(map[planning.Allergen]bool, len(req.ExcludedAllergens))
	for _, a := range req.ExcludedAllergens {
		excludedAllergens[a] = true
	}
	excludedDishes := make(map[uuid.UUID]bool, len(req.ExcludedDishIDs))
	for _, id := range req.ExcludedDishIDs {
		excludedDishes[id] = true
	}
	excludedIngredients := make(map[uuid.UUID]bool, len(req.ExcludedIngredientIDs))
	for _, id := range req.ExcludedIngredientIDs {
		excludedIngredients[id] = true
	}

	set := &CandidateSet{
		ByCategory: make(map[planning.DishCategory][]*planning.Dish),
		ByID:       make(map[uuid.UUID]*planning.Dish),
	}
	dropped := 0
	for _, dish := range catalog {
		if excludedDishes[dish.ID] ||
			dish.ContainsAllergen(excludedAllergens) ||
			dish.UsesIngredient(excludedIngredients) {
			dropped++
			continue
		}
		set.Dishes = append(set.Dishes, dish)
		set.ByCategory[dish.Category] = append(set.ByCategory[dish.Category], dish)
		set.ByID[dish.ID] = dish
	}
	f.logger.Debug("catalog filtered",
		zap.Int("candidates", len(set.Dishes)),
		zap.Int("dropped", dropped),
	)

	if err := f.checkSatisfiable(set, req); err != nil {
		return nil, err
	}
	return set, nil
}

// checkSatisfiable fails fast when a required category has no candidates,
// a required dish did not survive the filter, or strict variety demands
// more distinct dishes than the category holds.
func (f *CatalogFilter) checkSatisfiable(set *CandidateSet, req *planning.PlanningRequest) error {
	for cat := range req.RequiredCategories() {
		if len(set.ByCategory[cat]) == 0 {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("required category %q has no remaining candidates after filtering", cat),
			).WithMetadata("category", string(cat))
		}
	}

	for _, id := range req.RequiredDishIDs {
		if _, ok := set.ByID[id]; !ok {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("required dish %s is excluded or filtered out", id),
			).WithMetadata("dish_id", id.String())
		}
	}

	// Under strict variety each dish cooks at most once, so a category
	// needs at least horizon x (sum of slot minimums) distinct dishes.
	if req.VarietyLevel == planning.VarietyStrict {
		for cat, needPerDay := range dailyCategoryMinimums(req) {
			needed := needPerDay * req.HorizonDays
			if have := len(set.ByCategory[cat]); have < needed {
				return apperrors.NewConfigurationError(
					fmt.Sprintf("strict variety needs %d distinct %q dishes over %d days, catalog has %d",
						needed, cat, req.HorizonDays, have),
				).WithMetadata("category", string(cat))
			}
		}
	}
	return nil
}

// dailyCategoryMinimums sums the per-slot category minimums over the
// enabled slots of one day.
func dailyCategoryMinimums(req *planning.PlanningRequest) map[planning.DishCategory]int {
	mins := make(map[planning.DishCategory]int)
	for _, slot := range req.EnabledSlots() {
		for cat, b := range req.Slots[slot].Categories {
			if b.Min > 0 {
				mins[cat] += b.Min
			}
		}
	}
	return mins
}
