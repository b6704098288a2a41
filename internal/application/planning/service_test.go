package planning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/infrastructure/catalog"
	"github.com/alchemorsel/planner/internal/infrastructure/nutrition"
	"github.com/alchemorsel/planner/internal/infrastructure/progress"
	"github.com/alchemorsel/planner/internal/optimizer"
	"github.com/alchemorsel/planner/internal/ports/inbound"
	"github.com/alchemorsel/planner/internal/solver"
	"github.com/alchemorsel/planner/pkg/errors"
	"github.com/alchemorsel/planner/test/testutils"
)

// nopMetrics satisfies the metrics port without a Prometheus registry.
type nopMetrics struct {
	mu        sync.Mutex
	solves    map[string]int
	fallbacks int
}

func newNopMetrics() *nopMetrics {
	return &nopMetrics{solves: make(map[string]int)}
}

func (m *nopMetrics) RecordSolve(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solves[outcome]++
}
func (m *nopMetrics) RecordFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}
func (m *nopMetrics) RecordRejection(string) {}

func newTestService(t *testing.T, dishes []*planning.Dish, metrics *nopMetrics) inbound.PlannerService {
	t.Helper()
	logger := zap.NewNop()

	provider, err := catalog.NewMemoryCatalog(dishes, logger)
	require.NoError(t, err)
	registry, err := solver.NewRegistry(logger, solver.DefaultFactories()...)
	require.NoError(t, err)

	cfg := optimizer.DefaultConfig()
	cfg.SolveTimeout = 10 * time.Second
	return NewPlannerService(provider, nutrition.NewCalculator(), metrics, nil, cfg, registry, logger)
}

func testDishes() []*planning.Dish {
	return []*planning.Dish{
		testutils.NewDishBuilder().WithName("braised main").Build(),
		testutils.NewDishBuilder().WithName("roasted main").Build(),
		testutils.NewDishBuilder().WithName("steamed rice").WithCategory(planning.CategoryStaple).Build(),
		testutils.NewDishBuilder().WithName("bread").WithCategory(planning.CategoryStaple).Build(),
	}
}

func testRequest() *planning.PlanningRequest {
	req := testutils.NewRequestBuilder().WithHorizon(1).WithPeople(1).Build()
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

func TestOptimizePlanEndToEnd(t *testing.T) {
	metrics := newNopMetrics()
	service := newTestService(t, testDishes(), metrics)
	sink := progress.NewMemorySink()

	plan, err := service.OptimizePlan(context.Background(), inbound.OptimizePlanCommand{
		Request:  testRequest(),
		Progress: sink,
	})
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", plan.PlanID.String())
	assert.Equal(t, 1, plan.HorizonDays)
	assert.NotEmpty(t, plan.CookingSchedule)
	require.Len(t, plan.DailyAssignments, 1)

	// One main and one staple at lunch.
	served := plan.DailyAssignments[0].Meals[planning.SlotLunch]
	require.Len(t, served, 2)
	cats := map[planning.DishCategory]bool{}
	for _, s := range served {
		cats[s.Category] = true
	}
	assert.True(t, cats[planning.CategoryMain])
	assert.True(t, cats[planning.CategoryStaple])

	assert.NotEmpty(t, plan.Achievement)
	assert.Equal(t, 1, metrics.solves["solved"]+metrics.solves["fallback"])
}

func TestOptimizePlanProgressSequence(t *testing.T) {
	service := newTestService(t, testDishes(), newNopMetrics())
	sink := progress.NewMemorySink()

	_, err := service.OptimizePlan(context.Background(), inbound.OptimizePlanCommand{
		Request:  testRequest(),
		Progress: sink,
	})
	require.NoError(t, err)

	snapshots := sink.Snapshots()
	require.NotEmpty(t, snapshots)
	assert.Equal(t, "filtering", snapshots[0].Phase)
	last := snapshots[len(snapshots)-1]
	assert.Equal(t, "completed", last.Phase)
	assert.Equal(t, 100, last.Percent)

	for i := 1; i < len(snapshots); i++ {
		assert.GreaterOrEqual(t, snapshots[i].Percent, snapshots[i-1].Percent)
		assert.GreaterOrEqual(t, snapshots[i].Elapsed, snapshots[i-1].Elapsed)
	}
}

func TestOptimizePlanRejectsInvalidRequest(t *testing.T) {
	service := newTestService(t, testDishes(), newNopMetrics())

	req := testRequest()
	req.People = 0

	_, err := service.OptimizePlan(context.Background(), inbound.OptimizePlanCommand{Request: req})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationFailed, errors.GetCode(err))
}

func TestOptimizePlanRejectsUnsatisfiableConfiguration(t *testing.T) {
	// No dessert in the catalog, but lunch demands one.
	service := newTestService(t, testDishes(), newNopMetrics())

	req := testRequest()
	req.Slots[planning.SlotLunch].Categories[planning.CategoryDessert] = planning.CategoryBounds{Min: 1, Max: 1}

	_, err := service.OptimizePlan(context.Background(), inbound.OptimizePlanCommand{Request: req})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
}

// timedOutBackend simulates a search that exhausts its budget without an
// incumbent.
type timedOutBackend struct{}

func (timedOutBackend) Name() string { return "stub-timeout" }
func (timedOutBackend) Solve(context.Context, *solver.Model, solver.Options) (*solver.Solution, error) {
	return &solver.Solution{Status: solver.StatusTimedOut}, nil
}

func TestOptimizePlanDegradesWhenSolveTimesOut(t *testing.T) {
	logger := zap.NewNop()
	provider, err := catalog.NewMemoryCatalog(testDishes(), logger)
	require.NoError(t, err)
	registry, err := solver.NewRegistry(logger, solver.Factory{
		Name: "stub-timeout",
		New:  func(*zap.Logger) (solver.Backend, error) { return timedOutBackend{}, nil },
	})
	require.NoError(t, err)

	metrics := newNopMetrics()
	cfg := optimizer.DefaultConfig()
	cfg.SolveTimeout = 2 * time.Second
	service := NewPlannerService(provider, nutrition.NewCalculator(), metrics, nil, cfg, registry, logger)

	plan, err := service.OptimizePlan(context.Background(), inbound.OptimizePlanCommand{Request: testRequest()})
	require.NoError(t, err, "a timed-out solve degrades, it does not fail")
	require.NotNil(t, plan)

	assert.True(t, plan.Degraded)
	require.NotEmpty(t, plan.Warnings)
	assert.Equal(t, planning.WarnSolveDegraded, plan.Warnings[0].Code)
	assert.Contains(t, plan.Warnings[0].Message, "timed out")
	assert.Equal(t, 1, metrics.fallbacks)
	assert.Equal(t, 1, metrics.solves["fallback"])
}

func TestRefinePlanExcludesRejectedDishes(t *testing.T) {
	dishes := testDishes()
	service := newTestService(t, dishes, newNopMetrics())

	rejected := dishes[0]
	plan, err := service.RefinePlan(context.Background(), inbound.RefinePlanCommand{
		Request:         testRequest(),
		RejectedDishIDs: []uuid.UUID{rejected.ID},
	})
	require.NoError(t, err)

	for _, ev := range plan.CookingSchedule {
		assert.NotEqual(t, rejected.ID, ev.DishID)
	}
}

func TestRefinePlanRequiresKeptDishes(t *testing.T) {
	dishes := testDishes()
	service := newTestService(t, dishes, newNopMetrics())

	kept := dishes[1]
	plan, err := service.RefinePlan(context.Background(), inbound.RefinePlanCommand{
		Request:     testRequest(),
		KeepDishIDs: []uuid.UUID{kept.ID},
	})
	require.NoError(t, err)

	found := false
	for _, ev := range plan.CookingSchedule {
		if ev.DishID == kept.ID {
			found = true
		}
	}
	assert.True(t, found, "kept dish must be cooked at least once")
}
