package optimizer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/solver"
	"github.com/alchemorsel/planner/test/testutils"
)

func newFallback(t *testing.T) *FallbackPlanner {
	t.Helper()
	cfg := DefaultConfig()
	logger := zap.NewNop()
	registry, err := solver.NewRegistry(logger, solver.DefaultFactories()...)
	require.NoError(t, err)
	return NewFallbackPlanner(cfg,
		NewModelBuilder(cfg, logger),
		NewObjectiveComposer(cfg, logger),
		registry, logger)
}

func fallbackCatalog() *CandidateSet {
	return candidateSet(
		testutils.NewDishBuilder().WithName("main a").Build(),
		testutils.NewDishBuilder().WithName("main b").Build(),
		testutils.NewDishBuilder().WithName("main c").Build(),
		testutils.NewDishBuilder().WithName("staple a").WithCategory(planning.CategoryStaple).Build(),
		testutils.NewDishBuilder().WithName("staple b").WithCategory(planning.CategoryStaple).Build(),
	)
}

func lunchOnlyRequest(days int) *planning.PlanningRequest {
	req := testutils.NewRequestBuilder().WithHorizon(days).WithPeople(2).Build()
	req.Slots = map[planning.MealSlot]planning.SlotPlan{
		planning.SlotLunch: {
			Enabled: true,
			Categories: map[planning.DishCategory]planning.CategoryBounds{
				planning.CategoryMain:   {Min: 1, Max: 1},
				planning.CategoryStaple: {Min: 1, Max: 1},
			},
		},
	}
	return req
}

func TestFallbackPlanConservesServings(t *testing.T) {
	req := lunchOnlyRequest(2)
	candidates := fallbackCatalog()
	targets := coreTargets(t, req)

	events, consumption, _ := newFallback(t).Plan(context.Background(), req, candidates, targets)
	require.NotEmpty(t, events)

	plan, err := newExtractor().Assemble(req, candidates, targets, events, consumption, nil, true)
	require.NoError(t, err)
	assert.True(t, plan.Degraded)
}

func TestFallbackCoversEveryDay(t *testing.T) {
	req := lunchOnlyRequest(3)
	candidates := fallbackCatalog()
	targets := coreTargets(t, req)

	_, consumption, _ := newFallback(t).Plan(context.Background(), req, candidates, targets)

	days := make(map[int]bool)
	for _, c := range consumption {
		assert.Equal(t, c.CookDay, c.Day, "fallback plans carry no cross-day batches")
		days[c.Day] = true
	}
	for day := 0; day < req.HorizonDays; day++ {
		assert.True(t, days[day], "day %d has no consumption", day)
	}
}

func TestGreedyDayFillsCategoryMinimums(t *testing.T) {
	req := lunchOnlyRequest(1)
	candidates := fallbackCatalog()
	targets := coreTargets(t, req)

	events, consumption := newFallback(t).greedyDay(req, candidates, targets, 0)

	require.Len(t, events, 2) // one main, one staple
	cats := make(map[planning.DishCategory]bool)
	for _, ev := range events {
		cats[candidates.ByID[ev.DishID].Category] = true
		assert.Equal(t, req.People, ev.Servings)
	}
	assert.True(t, cats[planning.CategoryMain])
	assert.True(t, cats[planning.CategoryStaple])

	for _, c := range consumption {
		assert.Equal(t, 0, c.Day)
		assert.Equal(t, 0, c.CookDay)
	}
}

func TestDayCandidatesStrictVarietyExcludesUsedDishes(t *testing.T) {
	req := lunchOnlyRequest(2)
	req.VarietyLevel = planning.VarietyStrict
	candidates := fallbackCatalog()

	usedID := candidates.Dishes[0].ID
	used := map[uuid.UUID]bool{usedID: true}
	lastDay := map[uuid.UUID]int{usedID: 0}

	narrowed := newFallback(t).dayCandidates(req, candidates, used, lastDay, 1)
	assert.NotContains(t, narrowed.ByID, usedID)
	assert.Len(t, narrowed.Dishes, len(candidates.Dishes)-1)
}

func TestDayCandidatesReopensExhaustedRequiredCategory(t *testing.T) {
	req := lunchOnlyRequest(2)
	req.VarietyLevel = planning.VarietyStrict
	candidates := fallbackCatalog()

	// Every staple already used: the category must come back anyway.
	used := make(map[uuid.UUID]bool)
	lastDay := make(map[uuid.UUID]int)
	for _, d := range candidates.ByCategory[planning.CategoryStaple] {
		used[d.ID] = true
		lastDay[d.ID] = 0
	}

	narrowed := newFallback(t).dayCandidates(req, candidates, used, lastDay, 1)
	assert.NotEmpty(t, narrowed.ByCategory[planning.CategoryStaple])
}

func TestSpreadRequiredDishesRoundRobin(t *testing.T) {
	req := lunchOnlyRequest(2)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	req.RequiredDishIDs = []uuid.UUID{a, b, c}

	byDay := spreadRequiredDishes(req)
	require.Len(t, byDay, 2)
	assert.Equal(t, []uuid.UUID{a, c}, byDay[0])
	assert.Equal(t, []uuid.UUID{b}, byDay[1])
}
