package optimizer

import (
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
)

// TargetResolver resolves the active nutrients of one solve and their
// bounds, weights, and penalty directions.
type TargetResolver struct {
	defaults map[planning.NutrientKey]planning.NutrientTarget
	logger   *zap.Logger
}

// NewTargetResolver creates a resolver over the configured default targets.
func NewTargetResolver(cfg Config, logger *zap.Logger) *TargetResolver {
	return &TargetResolver{
		defaults: cfg.DefaultTargets,
		logger:   logger.Named("target-resolver"),
	}
}

// Resolve returns the active targets: the fixed core set always, the
// extended set when the request enables it, with request overrides merged
// over the configured defaults. Overrides for nutrients outside the active
// set are ignored.
func (r *TargetResolver) Resolve(req *planning.PlanningRequest) map[planning.NutrientKey]planning.NutrientTarget {
	active := planning.CoreNutrients()
	if req.IncludeExtendedNutrients {
		active = append(active, planning.ExtendedNutrients()...)
	}

	resolved := make(map[planning.NutrientKey]planning.NutrientTarget, len(active))
	for _, key := range active {
		target, ok := r.defaults[key]
		if !ok {
			r.logger.Warn("nutrient has no configured default target, skipping",
				zap.String("nutrient", string(key)),
			)
			continue
		}
		if override, ok := req.NutrientOverrides[key]; ok {
			target = mergeOverride(target, override)
		}
		resolved[key] = target
	}
	return resolved
}

// mergeOverride keeps the default direction and weight unless the override
// sets them, and takes override bounds when positive.
func mergeOverride(base, override planning.NutrientTarget) planning.NutrientTarget {
	out := base
	if override.Min > 0 {
		out.Min = override.Min
	}
	if override.Max > 0 {
		out.Max = override.Max
	}
	if override.Weight > 0 {
		out.Weight = override.Weight
	}
	if override.Direction != "" {
		out.Direction = override.Direction
	}
	return out
}
