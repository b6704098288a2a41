package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/test/testutils"
)

func TestResolveCoreNutrientsOnly(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig(), zap.NewNop())
	req := testutils.NewRequestBuilder().Build()

	targets := resolver.Resolve(req)

	assert.Len(t, targets, len(planning.CoreNutrients()))
	assert.Contains(t, targets, planning.NutrientEnergy)
	assert.NotContains(t, targets, planning.NutrientZinc)
}

func TestResolveExtendedNutrients(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig(), zap.NewNop())
	req := testutils.NewRequestBuilder().WithExtendedNutrients().Build()

	targets := resolver.Resolve(req)

	assert.Len(t, targets, len(planning.CoreNutrients())+len(planning.ExtendedNutrients()))
	assert.Contains(t, targets, planning.NutrientZinc)
	assert.Contains(t, targets, planning.NutrientCholesterol)
}

func TestResolveMergesOverrides(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig(), zap.NewNop())
	req := testutils.NewRequestBuilder().
		WithNutrientOverride(planning.NutrientProtein, planning.NutrientTarget{Min: 90}).
		Build()

	targets := resolver.Resolve(req)

	protein, ok := targets[planning.NutrientProtein]
	require.True(t, ok)
	assert.Equal(t, 90.0, protein.Min)
	// direction and weight stay at the configured defaults
	assert.Equal(t, planning.PenaltyDeficit, protein.Direction)
	assert.Equal(t, DefaultConfig().DefaultTargets[planning.NutrientProtein].Weight, protein.Weight)
}

func TestResolveIgnoresOverridesOutsideActiveSet(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig(), zap.NewNop())
	req := testutils.NewRequestBuilder().
		WithNutrientOverride(planning.NutrientZinc, planning.NutrientTarget{Min: 20}).
		Build()

	targets := resolver.Resolve(req)
	assert.NotContains(t, targets, planning.NutrientZinc)
}
