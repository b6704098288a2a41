package optimizer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/infrastructure/nutrition"
	"github.com/alchemorsel/planner/pkg/errors"
	"github.com/alchemorsel/planner/test/testutils"
)

func newExtractor() *Extractor {
	return NewExtractor(DefaultConfig(), nutrition.NewCalculator(), zap.NewNop())
}

func TestAssembleRejectsUnconservedPlan(t *testing.T) {
	dish := testutils.NewDishBuilder().Build()
	req := testutils.NewRequestBuilder().WithHorizon(1).Build()
	targets := coreTargets(t, req)

	events := []planning.CookingEvent{
		{DishID: dish.ID, DishName: dish.Name, Day: 0, Servings: 4},
	}
	consumption := []planning.ConsumptionEvent{
		{DishID: dish.ID, CookDay: 0, Day: 0, Slot: planning.SlotLunch, Servings: 2},
	}

	_, err := newExtractor().Assemble(req, candidateSet(dish), targets, events, consumption, nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeExtraction))
}

func TestAssembleBuildsAssignmentsAndTotals(t *testing.T) {
	dish := testutils.NewDishBuilder().
		WithNutrient(planning.NutrientProtein, 30).
		Build()
	req := testutils.NewRequestBuilder().WithHorizon(1).WithPeople(2).Build()
	targets := coreTargets(t, req)

	events := []planning.CookingEvent{
		{DishID: dish.ID, DishName: dish.Name, Day: 0, Servings: 2},
	}
	consumption := []planning.ConsumptionEvent{
		{DishID: dish.ID, CookDay: 0, Day: 0, Slot: planning.SlotLunch, Servings: 2},
	}

	plan, err := newExtractor().Assemble(req, candidateSet(dish), targets, events, consumption, nil, false)
	require.NoError(t, err)

	require.Len(t, plan.DailyAssignments, 1)
	served := plan.DailyAssignments[0].Meals[planning.SlotLunch]
	require.Len(t, served, 1)
	assert.Equal(t, dish.ID, served[0].DishID)
	assert.Equal(t, 2, served[0].Servings)

	assert.InDelta(t, 60, plan.NutrientTotals[planning.NutrientProtein], 1e-9)
	// 60g over one day for two people against a 60g daily target: 50%.
	assert.InDelta(t, 50, plan.Achievement[planning.NutrientProtein], 1e-9)
	assert.False(t, plan.Degraded)
}

func TestAssembleWarnsOnDeficitAndCap(t *testing.T) {
	// Tiny protein, huge salt: expect a deficit warning and an exceeded
	// warning.
	dish := testutils.NewDishBuilder().
		WithNutrient(planning.NutrientProtein, 1).
		WithNutrient(planning.NutrientSalt, 40).
		Build()
	req := testutils.NewRequestBuilder().WithHorizon(1).WithPeople(1).Build()
	targets := coreTargets(t, req)

	events := []planning.CookingEvent{
		{DishID: dish.ID, DishName: dish.Name, Day: 0, Servings: 1},
	}
	consumption := []planning.ConsumptionEvent{
		{DishID: dish.ID, CookDay: 0, Day: 0, Slot: planning.SlotLunch, Servings: 1},
	}

	plan, err := newExtractor().Assemble(req, candidateSet(dish), targets, events, consumption, nil, false)
	require.NoError(t, err)

	var codes []planning.WarningCode
	for _, w := range plan.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, planning.WarnNutrientDeficit)
	assert.Contains(t, codes, planning.WarnNutrientExceeded)
}

func TestShoppingListAggregatesAndSubtractsOwned(t *testing.T) {
	rice := planning.IngredientRequirement{
		ID: uuid.New(), Name: "rice", Amount: 200, Unit: planning.UnitGram,
	}
	stock := planning.IngredientRequirement{
		ID: uuid.New(), Name: "stock", Amount: 500, Unit: planning.UnitMilliliter,
	}
	dish := testutils.NewDishBuilder().WithIngredients(rice, stock).Build()

	req := testutils.NewRequestBuilder().WithHorizon(1).WithPeople(3).Build()
	// 0.1 kg of rice on hand.
	req.OwnedIngredients = []planning.OwnedIngredient{
		{ID: rice.ID, Amount: 0.1, Unit: planning.UnitKilogram},
	}
	targets := coreTargets(t, req)

	events := []planning.CookingEvent{
		{DishID: dish.ID, DishName: dish.Name, Day: 0, Servings: 3},
	}
	consumption := []planning.ConsumptionEvent{
		{DishID: dish.ID, CookDay: 0, Day: 0, Slot: planning.SlotLunch, Servings: 3},
	}

	plan, err := newExtractor().Assemble(req, candidateSet(dish), targets, events, consumption, nil, false)
	require.NoError(t, err)

	byName := make(map[string]planning.ShoppingItem)
	for _, item := range plan.ShoppingList {
		byName[item.Name] = item
	}

	// 3 x 200g - 100g owned = 500g.
	require.Contains(t, byName, "rice")
	assert.InDelta(t, 500, byName["rice"].Amount, 1e-9)
	assert.Equal(t, planning.UnitGram, byName["rice"].Unit)

	// 3 x 500ml = 1500ml, displayed as 1.5 l.
	require.Contains(t, byName, "stock")
	assert.InDelta(t, 1.5, byName["stock"].Amount, 1e-9)
	assert.Equal(t, planning.UnitLiter, byName["stock"].Unit)
}

func TestShoppingListIgnoresOwnedUnitMismatch(t *testing.T) {
	noodles := planning.IngredientRequirement{
		ID: uuid.New(), Name: "noodles", Amount: 120, Unit: planning.UnitGram,
	}
	dish := testutils.NewDishBuilder().WithIngredients(noodles).Build()

	req := testutils.NewRequestBuilder().WithHorizon(1).WithPeople(1).Build()
	// Recorded by count, not weight: must not be subtracted from grams.
	req.OwnedIngredients = []planning.OwnedIngredient{
		{ID: noodles.ID, Amount: 2, Unit: planning.UnitPiece},
	}
	targets := coreTargets(t, req)

	events := []planning.CookingEvent{
		{DishID: dish.ID, DishName: dish.Name, Day: 0, Servings: 1},
	}
	consumption := []planning.ConsumptionEvent{
		{DishID: dish.ID, CookDay: 0, Day: 0, Slot: planning.SlotLunch, Servings: 1},
	}

	plan, err := newExtractor().Assemble(req, candidateSet(dish), targets, events, consumption, nil, false)
	require.NoError(t, err)

	require.Len(t, plan.ShoppingList, 1)
	assert.InDelta(t, 120, plan.ShoppingList[0].Amount, 1e-9)
	assert.Equal(t, planning.UnitGram, plan.ShoppingList[0].Unit)
}

func TestShoppingListOmitsFullyOwnedIngredients(t *testing.T) {
	flour := planning.IngredientRequirement{
		ID: uuid.New(), Name: "flour", Amount: 100, Unit: planning.UnitGram,
	}
	dish := testutils.NewDishBuilder().WithIngredients(flour).Build()

	req := testutils.NewRequestBuilder().WithHorizon(1).WithPeople(1).Build()
	req.OwnedIngredients = []planning.OwnedIngredient{
		{ID: flour.ID, Amount: 1, Unit: planning.UnitKilogram},
	}
	targets := coreTargets(t, req)

	events := []planning.CookingEvent{
		{DishID: dish.ID, DishName: dish.Name, Day: 0, Servings: 1},
	}
	consumption := []planning.ConsumptionEvent{
		{DishID: dish.ID, CookDay: 0, Day: 0, Slot: planning.SlotLunch, Servings: 1},
	}

	plan, err := newExtractor().Assemble(req, candidateSet(dish), targets, events, consumption, nil, false)
	require.NoError(t, err)
	assert.Empty(t, plan.ShoppingList)
}
