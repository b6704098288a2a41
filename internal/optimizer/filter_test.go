package optimizer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/pkg/errors"
	"github.com/alchemorsel/planner/test/testutils"
)

func TestFilterDropsExcludedDishesAndAllergens(t *testing.T) {
	eggDish := testutils.NewDishBuilder().
		WithName("omelette").
		WithAllergen(planning.AllergenEgg).
		Build()
	safeDish := testutils.NewDishBuilder().WithName("stew").Build()
	bannedDish := testutils.NewDishBuilder().WithName("casserole").Build()

	req := testutils.NewRequestBuilder().
		WithExcludedAllergens(planning.AllergenEgg).
		WithExcludedDishes(bannedDish.ID).
		Build()
	// only mains required for this check
	req.Slots[planning.SlotLunch] = planning.SlotPlan{
		Enabled: true,
		Categories: map[planning.DishCategory]planning.CategoryBounds{
			planning.CategoryMain: {Min: 1, Max: 1},
		},
	}
	req.Slots[planning.SlotDinner] = planning.SlotPlan{Enabled: false}

	filter := NewCatalogFilter(zap.NewNop())
	set, err := filter.Apply([]*planning.Dish{eggDish, safeDish, bannedDish}, req)
	require.NoError(t, err)

	assert.Len(t, set.Dishes, 1)
	assert.Contains(t, set.ByID, safeDish.ID)
	assert.NotContains(t, set.ByID, eggDish.ID)
	assert.NotContains(t, set.ByID, bannedDish.ID)
}

func TestFilterDropsExcludedIngredients(t *testing.T) {
	chicken := planning.IngredientRequirement{
		ID: uuid.New(), Name: "chicken", Amount: 150, Unit: planning.UnitGram,
	}
	withChicken := testutils.NewDishBuilder().
		WithName("grilled chicken").
		WithIngredients(chicken).
		Build()
	without := testutils.NewDishBuilder().WithName("bean salad").Build()

	req := simpleMainOnlyRequest()
	req.ExcludedIngredientIDs = append(req.ExcludedIngredientIDs, chicken.ID)

	filter := NewCatalogFilter(zap.NewNop())
	set, err := filter.Apply([]*planning.Dish{withChicken, without}, req)
	require.NoError(t, err)
	assert.Len(t, set.Dishes, 1)
	assert.Contains(t, set.ByID, without.ID)
}

func TestFilterFailsWhenRequiredCategoryEmpty(t *testing.T) {
	staple := testutils.NewDishBuilder().WithCategory(planning.CategoryStaple).Build()

	req := simpleMainOnlyRequest()

	filter := NewCatalogFilter(zap.NewNop())
	_, err := filter.Apply([]*planning.Dish{staple}, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfiguration))
}

func TestFilterFailsWhenRequiredDishFilteredOut(t *testing.T) {
	main := testutils.NewDishBuilder().Build()
	required := testutils.NewDishBuilder().WithAllergen(planning.AllergenMilk).Build()

	req := simpleMainOnlyRequest()
	req.RequiredDishIDs = append(req.RequiredDishIDs, required.ID)
	req.ExcludedAllergens = append(req.ExcludedAllergens, planning.AllergenMilk)

	filter := NewCatalogFilter(zap.NewNop())
	_, err := filter.Apply([]*planning.Dish{main, required}, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfiguration))
}

func TestFilterFailsStrictVarietyWithSmallCatalog(t *testing.T) {
	// Three days of one main per lunch needs three distinct mains under
	// strict variety; the catalog has two.
	mains := []*planning.Dish{
		testutils.NewDishBuilder().WithName("main a").Build(),
		testutils.NewDishBuilder().WithName("main b").Build(),
	}

	req := simpleMainOnlyRequest()
	req.HorizonDays = 3
	req.VarietyLevel = planning.VarietyStrict

	filter := NewCatalogFilter(zap.NewNop())
	_, err := filter.Apply(mains, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfiguration))
}

func TestFilterPassesStrictVarietyWithEnoughDishes(t *testing.T) {
	var mains []*planning.Dish
	for i := 0; i < 3; i++ {
		mains = append(mains, testutils.NewDishBuilder().Build())
	}

	req := simpleMainOnlyRequest()
	req.HorizonDays = 3
	req.VarietyLevel = planning.VarietyStrict

	filter := NewCatalogFilter(zap.NewNop())
	set, err := filter.Apply(mains, req)
	require.NoError(t, err)
	assert.Len(t, set.Dishes, 3)
}

func TestFilterIsPureOverRepeatedCalls(t *testing.T) {
	catalog := []*planning.Dish{
		testutils.NewDishBuilder().WithName("main a").Build(),
		testutils.NewDishBuilder().WithName("main b").WithAllergen(planning.AllergenFish).Build(),
		testutils.NewDishBuilder().WithName("staple a").WithCategory(planning.CategoryStaple).Build(),
	}
	req := simpleMainOnlyRequest()
	req.ExcludedAllergens = append(req.ExcludedAllergens, planning.AllergenFish)

	filter := NewCatalogFilter(zap.NewNop())
	first, err := filter.Apply(catalog, req)
	require.NoError(t, err)
	second, err := filter.Apply(catalog, req)
	require.NoError(t, err)

	var firstIDs, secondIDs []uuid.UUID
	for _, d := range first.Dishes {
		firstIDs = append(firstIDs, d.ID)
	}
	for _, d := range second.Dishes {
		secondIDs = append(secondIDs, d.ID)
	}
	assert.Equal(t, firstIDs, secondIDs)

	// The input catalog is left untouched.
	require.Len(t, catalog, 3)
	assert.Equal(t, "main b", catalog[1].Name)
}

// simpleMainOnlyRequest enables lunch only, one main per slot.
func simpleMainOnlyRequest() *planning.PlanningRequest {
	req := testutils.NewRequestBuilder().Build()
	req.Slots = map[planning.MealSlot]planning.SlotPlan{
		planning.SlotLunch: {
			Enabled: true,
			Categories: map[planning.DishCategory]planning.CategoryBounds{
				planning.CategoryMain: {Min: 1, Max: 1},
			},
		},
	}
	return req
}
