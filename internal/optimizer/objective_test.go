package optimizer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/test/testutils"
)

func composedModel(t *testing.T, req *planning.PlanningRequest, set *CandidateSet) *PlanModel {
	t.Helper()
	cfg := DefaultConfig()
	pm, err := NewModelBuilder(cfg, zap.NewNop()).Build(req, set, coreTargets(t, req))
	require.NoError(t, err)
	NewObjectiveComposer(cfg, zap.NewNop()).Compose(pm)
	return pm
}

func TestComposeDeficitOutweighsCap(t *testing.T) {
	dish := testutils.NewDishBuilder().Build()
	req := lunchOnlyRequest(1)
	pm := composedModel(t, req, candidateSet(dish, testutils.NewDishBuilder().WithCategory(planning.CategoryStaple).Build()))

	vars := pm.Model.Variables()
	proteinUnder := vars[pm.Under[DevKey{Day: 0, Nutrient: planning.NutrientProtein}]]
	saltOver := vars[pm.Over[DevKey{Day: 0, Nutrient: planning.NutrientSalt}]]

	// Normalized by their references, a full protein miss must cost more
	// than a full salt overshoot.
	proteinTarget := pm.Targets[planning.NutrientProtein]
	saltTarget := pm.Targets[planning.NutrientSalt]
	assert.Greater(t,
		proteinUnder.Cost*proteinTarget.Reference()/proteinTarget.Weight,
		saltOver.Cost*saltTarget.Reference()/saltTarget.Weight,
	)
	assert.Positive(t, proteinUnder.Cost)
	assert.Positive(t, saltOver.Cost)
}

func TestComposeBatchWeightScalesWithLevel(t *testing.T) {
	set := candidateSet(
		testutils.NewDishBuilder().Build(),
		testutils.NewDishBuilder().WithCategory(planning.CategoryStaple).Build(),
	)

	low := lunchOnlyRequest(1)
	low.BatchCookingLevel = planning.BatchLow
	high := lunchOnlyRequest(1)
	high.BatchCookingLevel = planning.BatchHigh

	lowCost := composedModel(t, low, set).Model.Variables()[0].Cost
	highCost := composedModel(t, high, set).Model.Variables()[0].Cost
	assert.Greater(t, highCost, lowCost)
}

func TestComposePreferredIngredientEarnsBonus(t *testing.T) {
	tofu := planning.IngredientRequirement{
		ID: uuid.New(), Name: "tofu", Amount: 100, Unit: planning.UnitGram,
	}
	withTofu := testutils.NewDishBuilder().WithIngredients(tofu).Build()
	plain := testutils.NewDishBuilder().Build()
	set := candidateSet(
		withTofu,
		plain,
		testutils.NewDishBuilder().WithCategory(planning.CategoryStaple).Build(),
	)

	req := lunchOnlyRequest(1)
	req.PreferredIngredientIDs = append(req.PreferredIngredientIDs, tofu.ID)

	pm := composedModel(t, req, set)
	withCost := pm.Model.Variables()[pm.Cook[CookKey{Dish: 0, Day: 0}]].Cost
	plainCost := pm.Model.Variables()[pm.Cook[CookKey{Dish: 1, Day: 0}]].Cost
	assert.Less(t, withCost, plainCost)
}

func TestComposePreferenceBonusIsBounded(t *testing.T) {
	preferred := testutils.NewDishBuilder().Build()
	set := candidateSet(
		preferred,
		testutils.NewDishBuilder().WithCategory(planning.CategoryStaple).Build(),
	)
	req := lunchOnlyRequest(1)
	req.PreferredDishIDs = append(req.PreferredDishIDs, preferred.ID)

	cfg := DefaultConfig()
	pm := composedModel(t, req, set)

	cookCost := pm.Model.Variables()[pm.Cook[CookKey{Dish: 0, Day: 0}]].Cost
	base := cfg.BatchWeights[req.BatchCookingLevel]
	bonus := base - cookCost
	assert.Positive(t, bonus)
	assert.LessOrEqual(t, bonus, cfg.PreferenceBonus+1e-9)
	// Total reachable bonus stays within the budget.
	assert.LessOrEqual(t, bonus*float64(req.HorizonDays), cfg.BonusBudget+1e-9)
}
