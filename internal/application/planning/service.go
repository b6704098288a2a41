// Package planning provides the application layer for meal-plan
// optimization. It implements the use cases defined in the inbound ports
// and orchestrates the optimizer pipeline end to end.
package planning

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/domain/shared"
	"github.com/alchemorsel/planner/internal/optimizer"
	"github.com/alchemorsel/planner/internal/ports/inbound"
	"github.com/alchemorsel/planner/internal/ports/outbound"
	"github.com/alchemorsel/planner/internal/solver"
	"github.com/alchemorsel/planner/pkg/errors"
)

// Solve outcomes reported to metrics.
const (
	outcomeSolved   = "solved"
	outcomeFallback = "fallback"
	outcomeFailed   = "failed"
)

// PlannerService implements the meal-plan optimization use cases. One call
// runs the full pipeline: filter the catalog, resolve targets, build and
// price the model, solve, and extract — falling back to per-day planning
// when the joint solve fails.
type PlannerService struct {
	catalog    outbound.DishCatalogProvider
	calculator outbound.NutrientCalculator
	metrics    outbound.PlannerMetrics
	events     shared.EventDispatcher

	cfg       optimizer.Config
	targets   *optimizer.TargetResolver
	filter    *optimizer.CatalogFilter
	builder   *optimizer.ModelBuilder
	composer  *optimizer.ObjectiveComposer
	extractor *optimizer.Extractor
	fallback  *optimizer.FallbackPlanner
	registry  *solver.Registry

	logger *zap.Logger
}

// NewPlannerService creates a new planner service wiring the optimizer
// pipeline over the given providers.
func NewPlannerService(
	catalog outbound.DishCatalogProvider,
	calculator outbound.NutrientCalculator,
	metrics outbound.PlannerMetrics,
	events shared.EventDispatcher,
	cfg optimizer.Config,
	registry *solver.Registry,
	logger *zap.Logger,
) inbound.PlannerService {
	builder := optimizer.NewModelBuilder(cfg, logger)
	composer := optimizer.NewObjectiveComposer(cfg, logger)
	return &PlannerService{
		catalog:    catalog,
		calculator: calculator,
		metrics:    metrics,
		events:     events,
		cfg:        cfg,
		targets:    optimizer.NewTargetResolver(cfg, logger),
		filter:     optimizer.NewCatalogFilter(logger),
		builder:    builder,
		composer:   composer,
		extractor:  optimizer.NewExtractor(cfg, calculator, logger),
		fallback:   optimizer.NewFallbackPlanner(cfg, builder, composer, registry, logger),
		registry:   registry,
		logger:     logger.Named("planner-service"),
	}
}

// OptimizePlan produces a multi-day plan for the request. It returns either
// a complete plan (possibly degraded, with warnings) or a typed failure,
// never a silent partial result.
func (s *PlannerService) OptimizePlan(ctx context.Context, cmd inbound.OptimizePlanCommand) (*inbound.PlanDTO, error) {
	start := time.Now()
	progress := newProgressReporter(cmd.Progress, start)

	req := cmd.Request
	if req == nil {
		return nil, s.reject(start, errors.NewValidationError("request is required"))
	}
	if err := req.Validate(); err != nil {
		return nil, s.reject(start, errors.NewValidationError(err.Error()))
	}

	s.logger.Info("Starting plan optimization",
		zap.Int("horizon_days", req.HorizonDays),
		zap.Int("people", req.People),
		zap.String("variety", string(req.VarietyLevel)),
		zap.String("batch_cooking", string(req.BatchCookingLevel)),
	)

	progress.publish("filtering", "filtering dish catalog", 10)
	dishes, err := s.catalog.FindExcludingAllergens(ctx, req.ExcludedAllergens)
	if err != nil {
		return nil, s.reject(start, errors.NewCatalogError("list dishes", err))
	}
	candidates, err := s.filter.Apply(dishes, req)
	if err != nil {
		return nil, s.reject(start, err)
	}
	progress.publish("catalog-filter-applied", "candidate set fixed", 20)

	targets := s.targets.Resolve(req)

	progress.publish("model-building", "building decision variables", 35)
	pm, err := s.builder.Build(req, candidates, targets)
	if err != nil {
		return nil, s.reject(start, err)
	}
	progress.publish("constraints-applied", "constraints and objective applied", 50)
	s.composer.Compose(pm)

	progress.publish("solving", "running joint solve", 70)
	solveCtx, cancel := context.WithTimeout(ctx, s.cfg.SolveTimeout)
	defer cancel()
	sol, solveErr := s.registry.Solve(solveCtx, pm.Model, solver.Options{
		Timeout:     s.cfg.SolveTimeout,
		RelativeGap: s.cfg.RelativeGap,
	})

	progress.publish("extracting", "extracting plan", 95)
	var plan *planning.MultiDayPlan
	var outcome string
	switch {
	case solveErr == nil && sol.Usable():
		plan, err = s.extractor.FromSolution(pm, sol, nil, false)
		if err != nil {
			return nil, s.reject(start, err)
		}
		outcome = outcomeSolved
		s.publishEvent(planning.PlanSolvedEvent{
			PlanID:    plan.PlanID,
			Horizon:   plan.HorizonDays,
			Objective: sol.Objective,
			SolvedAt:  time.Now(),
		})
	default:
		plan, err = s.runFallback(ctx, req, candidates, targets, solveErr, sol)
		if err != nil {
			return nil, s.reject(start, err)
		}
		outcome = outcomeFallback
	}

	progress.publish("completed", "plan ready", 100)
	s.metrics.RecordSolve(outcome, time.Since(start))
	s.logger.Info("Plan optimization finished",
		zap.String("plan_id", plan.PlanID.String()),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("warnings", len(plan.Warnings)),
	)
	return planToDTO(plan), nil
}

// RefinePlan re-plans with extra hard constraints: kept dishes become
// required and rejected dishes become excluded. The flow re-enters at the
// filter stage with the derived request.
func (s *PlannerService) RefinePlan(ctx context.Context, cmd inbound.RefinePlanCommand) (*inbound.PlanDTO, error) {
	if cmd.Request == nil {
		return nil, errors.NewValidationError("request is required")
	}
	refined := cmd.Request.Clone()
	refined.RequiredDishIDs = append(refined.RequiredDishIDs, cmd.KeepDishIDs...)
	refined.ExcludedDishIDs = append(refined.ExcludedDishIDs, cmd.RejectedDishIDs...)

	s.logger.Info("Refining plan",
		zap.Int("kept_dishes", len(cmd.KeepDishIDs)),
		zap.Int("rejected_dishes", len(cmd.RejectedDishIDs)),
	)
	return s.OptimizePlan(ctx, inbound.OptimizePlanCommand{
		Request:  refined,
		Progress: cmd.Progress,
	})
}

// runFallback plans the horizon day by day after a failed joint solve. The
// resulting plan is always flagged degraded and leads with a degradation
// warning naming the cause.
func (s *PlannerService) runFallback(
	ctx context.Context,
	req *planning.PlanningRequest,
	candidates *optimizer.CandidateSet,
	targets map[planning.NutrientKey]planning.NutrientTarget,
	solveErr error,
	sol *solver.Solution,
) (*planning.MultiDayPlan, error) {
	cause := "joint solve failed"
	switch {
	case solveErr != nil:
		cause = solveErr.Error()
	case sol != nil && sol.Status == solver.StatusInfeasible:
		cause = "joint model is infeasible"
	case sol != nil && sol.Status == solver.StatusTimedOut:
		cause = "joint solve timed out without a usable plan"
	}
	s.logger.Warn("Joint solve failed, running fallback planner", zap.String("cause", cause))
	s.metrics.RecordFallback()

	events, consumption, warnings := s.fallback.Plan(ctx, req, candidates, targets)
	warnings = append([]planning.Warning{{
		Code:    planning.WarnSolveDegraded,
		Message: "plan was produced by the per-day fallback planner: " + cause,
	}}, warnings...)

	plan, err := s.extractor.Assemble(req, candidates, targets, events, consumption, warnings, true)
	if err != nil {
		return nil, err
	}
	s.publishEvent(planning.PlanDegradedEvent{
		PlanID:     plan.PlanID,
		Cause:      cause,
		DegradedAt: time.Now(),
	})
	return plan, nil
}

func (s *PlannerService) reject(start time.Time, err error) error {
	s.metrics.RecordSolve(outcomeFailed, time.Since(start))
	s.metrics.RecordRejection(string(errors.GetCode(err)))
	s.logger.Warn("Plan optimization rejected", zap.Error(err))
	return err
}

func (s *PlannerService) publishEvent(event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event", event.EventName()),
			zap.Error(err),
		)
	}
}

// progressReporter wraps an optional sink and stamps snapshots with the
// elapsed wall clock. Percent values are fixed per phase so consumers see a
// non-decreasing sequence.
type progressReporter struct {
	sink  outbound.ProgressSink
	start time.Time
}

func newProgressReporter(sink outbound.ProgressSink, start time.Time) *progressReporter {
	return &progressReporter{sink: sink, start: start}
}

func (p *progressReporter) publish(phase, message string, percent int) {
	if p.sink == nil {
		return
	}
	p.sink.Publish(outbound.ProgressSnapshot{
		Phase:   phase,
		Message: message,
		Percent: percent,
		Elapsed: time.Since(p.start),
	})
}

func planToDTO(plan *planning.MultiDayPlan) *inbound.PlanDTO {
	return &inbound.PlanDTO{
		PlanID:           plan.PlanID,
		HorizonDays:      plan.HorizonDays,
		People:           plan.People,
		CookingSchedule:  plan.CookingSchedule,
		DailyAssignments: plan.DailyAssignments,
		ShoppingList:     plan.ShoppingList,
		NutrientTotals:   plan.NutrientTotals,
		Achievement:      plan.Achievement,
		Warnings:         plan.Warnings,
		Degraded:         plan.Degraded,
	}
}
