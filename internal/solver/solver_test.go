package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions() Options {
	return Options{Timeout: 5 * time.Second, RelativeGap: 0}
}

// knapsack: maximize 6a+5b+4c with a+b+c <= 2 over binaries, expressed as
// minimization. Optimum picks a and b.
func knapsackModel() *Model {
	m := NewModel()
	a := m.AddVariable("a", Binary, 0, 1)
	b := m.AddVariable("b", Binary, 0, 1)
	c := m.AddVariable("c", Binary, 0, 1)
	m.SetCost(a, -6)
	m.SetCost(b, -5)
	m.SetCost(c, -4)
	m.AddLessEqual("capacity", map[int]float64{a: 1, b: 1, c: 1}, 2)
	return m
}

func infeasibleModel() *Model {
	m := NewModel()
	x := m.AddVariable("x", Binary, 0, 1)
	y := m.AddVariable("y", Binary, 0, 1)
	m.AddGreaterEqual("min", map[int]float64{x: 1, y: 1}, 3)
	return m
}

func TestBranchBoundSolvesKnapsack(t *testing.T) {
	backend, err := NewBranchBound(zap.NewNop())
	require.NoError(t, err)

	sol, err := backend.Solve(context.Background(), knapsackModel(), testOptions())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, -11, sol.Objective, 1e-6)
	assert.InDelta(t, 1, sol.Values[0], 1e-6)
	assert.InDelta(t, 1, sol.Values[1], 1e-6)
	assert.InDelta(t, 0, sol.Values[2], 1e-6)
}

func TestBranchBoundMixedIntegers(t *testing.T) {
	// minimize x + 2y subject to x + y >= 3, x integer in [0,5],
	// y continuous in [0,10]. Optimum is x=3, y=0.
	m := NewModel()
	x := m.AddVariable("x", Integer, 0, 5)
	y := m.AddVariable("y", Continuous, 0, 10)
	m.SetCost(x, 1)
	m.SetCost(y, 2)
	m.AddGreaterEqual("demand", map[int]float64{x: 1, y: 1}, 3)

	backend, err := NewBranchBound(zap.NewNop())
	require.NoError(t, err)

	sol, err := backend.Solve(context.Background(), m, testOptions())
	require.NoError(t, err)
	require.True(t, sol.Usable())
	assert.InDelta(t, 3, sol.Objective, 1e-6)
	assert.InDelta(t, 3, sol.Values[x], 1e-6)
	assert.InDelta(t, 0, sol.Values[y], 1e-6)
}

func TestBranchBoundReportsInfeasible(t *testing.T) {
	backend, err := NewBranchBound(zap.NewNop())
	require.NoError(t, err)

	sol, err := backend.Solve(context.Background(), infeasibleModel(), testOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.False(t, sol.Usable())
}

func TestBranchBoundHonorsEqualities(t *testing.T) {
	// x + y == 4 with x, y integer in [0,3]; minimize x.
	m := NewModel()
	x := m.AddVariable("x", Integer, 0, 3)
	y := m.AddVariable("y", Integer, 0, 3)
	m.SetCost(x, 1)
	m.AddEquality("total", map[int]float64{x: 1, y: 1}, 4)

	backend, err := NewBranchBound(zap.NewNop())
	require.NoError(t, err)

	sol, err := backend.Solve(context.Background(), m, testOptions())
	require.NoError(t, err)
	require.True(t, sol.Usable())
	assert.InDelta(t, 1, sol.Values[x], 1e-6)
	assert.InDelta(t, 3, sol.Values[y], 1e-6)
}

func TestRepairFindsFeasiblePoint(t *testing.T) {
	backend, err := NewRepair(zap.NewNop())
	require.NoError(t, err)

	m := knapsackModel()
	sol, err := backend.Solve(context.Background(), m, testOptions())
	require.NoError(t, err)
	require.True(t, sol.Usable())
	assert.Zero(t, m.Violation(sol.Values, 1e-6))
}

func TestRepairReportsInfeasible(t *testing.T) {
	backend, err := NewRepair(zap.NewNop())
	require.NoError(t, err)

	sol, err := backend.Solve(context.Background(), infeasibleModel(), testOptions())
	require.NoError(t, err)
	assert.False(t, sol.Usable())
}

func TestRegistryDropsFailedBackends(t *testing.T) {
	reg, err := NewRegistry(zap.NewNop(),
		Factory{Name: "broken", New: func(*zap.Logger) (Backend, error) {
			return nil, errors.New("no license")
		}},
		Factory{Name: "repair", New: func(l *zap.Logger) (Backend, error) { return NewRepair(l) }},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"repair"}, reg.Backends())
}

func TestRegistryFailsWithoutBackends(t *testing.T) {
	_, err := NewRegistry(zap.NewNop(),
		Factory{Name: "broken", New: func(*zap.Logger) (Backend, error) {
			return nil, errors.New("no license")
		}},
	)
	require.Error(t, err)
}

type erroringBackend struct{}

func (erroringBackend) Name() string { return "erroring" }
func (erroringBackend) Solve(context.Context, *Model, Options) (*Solution, error) {
	return nil, errors.New("numerical blowup")
}

func TestRegistryFallsThroughOnBackendError(t *testing.T) {
	reg, err := NewRegistry(zap.NewNop(),
		Factory{Name: "erroring", New: func(*zap.Logger) (Backend, error) { return erroringBackend{}, nil }},
		Factory{Name: "bnb", New: func(l *zap.Logger) (Backend, error) { return NewBranchBound(l) }},
	)
	require.NoError(t, err)

	sol, err := reg.Solve(context.Background(), knapsackModel(), testOptions())
	require.NoError(t, err)
	assert.True(t, sol.Usable())
}

func TestDefaultFactoriesRankOrder(t *testing.T) {
	reg, err := NewRegistry(zap.NewNop(), DefaultFactories()...)
	require.NoError(t, err)
	assert.Equal(t, []string{"branch-and-bound", "repair"}, reg.Backends())
}
