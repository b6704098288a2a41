package solver

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/alchemorsel/planner/pkg/errors"
)

// Options control one solve run.
type Options struct {
	// Timeout is the wall-clock budget for the search.
	Timeout time.Duration
	// RelativeGap is the acceptable relative distance between the
	// incumbent and the best known bound.
	RelativeGap float64
}

// Backend is a capability provider that can solve a MILP model. Both
// backends are selected through the ranked Registry; call sites never pick
// a backend themselves.
type Backend interface {
	Name() string
	Solve(ctx context.Context, m *Model, opts Options) (*Solution, error)
}

// Factory constructs one backend, reporting initialization failure.
type Factory struct {
	Name string
	New  func(logger *zap.Logger) (Backend, error)
}

// DefaultFactories returns the ranked backend list: branch and bound
// first, the repair heuristic second.
func DefaultFactories() []Factory {
	return []Factory{
		{Name: "branch-and-bound", New: func(l *zap.Logger) (Backend, error) { return NewBranchBound(l) }},
		{Name: "repair", New: func(l *zap.Logger) (Backend, error) { return NewRepair(l) }},
	}
}

// Registry holds the backends that initialized successfully, in rank
// order. Fallthrough on initialization failure happens here, once, not at
// call sites.
type Registry struct {
	backends []Backend
	logger   *zap.Logger
}

// NewRegistry initializes the ranked backends. It returns a
// SolverUnavailable error when none can be constructed.
func NewRegistry(logger *zap.Logger, factories ...Factory) (*Registry, error) {
	log := logger.Named("solver-registry")
	var backends []Backend
	var lastErr error
	for _, f := range factories {
		backend, err := f.New(logger)
		if err != nil {
			log.Warn("solver backend failed to initialize",
				zap.String("backend", f.Name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		backends = append(backends, backend)
	}
	if len(backends) == 0 {
		return nil, apperrors.NewSolverUnavailableError(lastErr)
	}
	return &Registry{backends: backends, logger: log}, nil
}

// Backends returns the names of the initialized backends in rank order.
func (r *Registry) Backends() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Solve runs the highest-ranked backend. A backend runtime error (as
// opposed to an infeasible or timed-out result) falls through to the next
// rank before giving up.
func (r *Registry) Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	var lastErr error
	for _, backend := range r.backends {
		start := time.Now()
		sol, err := backend.Solve(ctx, m, opts)
		if err != nil {
			r.logger.Warn("solver backend error",
				zap.String("backend", backend.Name()),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		r.logger.Info("solve finished",
			zap.String("backend", backend.Name()),
			zap.String("status", sol.Status.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("variables", m.NumVariables()),
			zap.Int("constraints", m.NumConstraints()),
		)
		return sol, nil
	}
	return nil, apperrors.NewSolverUnavailableError(lastErr)
}
