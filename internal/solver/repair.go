package solver

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const repairTol = 1e-6

// Repair is the secondary MILP backend: a dependency-free constraint-repair
// heuristic. It starts from variable lower bounds, walks the most violated
// row toward feasibility one unit step at a time, then makes greedy
// objective-improving moves that preserve feasibility. It never proves
// optimality; its answers are StatusFeasible or StatusInfeasible.
type Repair struct {
	logger *zap.Logger
}

// NewRepair creates the repair backend.
func NewRepair(logger *zap.Logger) (*Repair, error) {
	return &Repair{logger: logger.Named("solver-repair")}, nil
}

// Name implements Backend.
func (r *Repair) Name() string { return "repair" }

// Solve implements Backend.
func (r *Repair) Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	deadline := time.Now().Add(opts.Timeout)
	n := m.NumVariables()

	values := make([]float64, n)
	for _, v := range m.Variables() {
		values[v.Index] = v.Lower
	}

	maxIters := 200 * (n + m.NumConstraints() + 1)
	for iter := 0; iter < maxIters; iter++ {
		if time.Now().After(deadline) || ctx.Err() != nil {
			break
		}
		ci := mostViolatedRow(m, values)
		if ci < 0 {
			break
		}
		if !r.repairRow(m, values, ci) {
			// The row cannot be moved further; no feasible point found.
			return &Solution{Status: StatusInfeasible}, nil
		}
	}

	if m.Violation(values, repairTol) > repairTol {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return &Solution{Status: StatusTimedOut}, nil
		}
		return &Solution{Status: StatusInfeasible}, nil
	}

	r.improve(ctx, m, values, deadline)

	return &Solution{
		Status:    StatusFeasible,
		Values:    values,
		Objective: m.Objective(values),
		Gap:       math.Inf(1),
	}, nil
}

func mostViolatedRow(m *Model, values []float64) int {
	worst := -1
	worstViol := repairTol
	for i := range m.Constraints() {
		c := &m.Constraints()[i]
		act := c.Activity(values)
		viol := 0.0
		if act < c.Lower-repairTol {
			viol = c.Lower - act
		} else if act > c.Upper+repairTol {
			viol = act - c.Upper
		}
		if viol > worstViol {
			worstViol = viol
			worst = i
		}
	}
	return worst
}

// repairRow moves one variable of the row toward feasibility. Continuous
// variables absorb the exact residual; integer variables step by one unit.
// Returns false when no variable can move.
func (r *Repair) repairRow(m *Model, values []float64, ci int) bool {
	c := &m.Constraints()[ci]
	act := c.Activity(values)
	var need float64
	switch {
	case act < c.Lower-repairTol:
		need = c.Lower - act
	case act > c.Upper+repairTol:
		need = c.Upper - act
	default:
		return true
	}

	// Prefer the move with the cheapest objective impact per unit of
	// violation removed.
	bestIdx, bestStep := -1, 0.0
	bestScore := math.Inf(1)
	for idx, coeff := range c.Coeffs {
		if coeff == 0 {
			continue
		}
		v := &m.Variables()[idx]
		want := need / coeff
		var step float64
		if v.Type == Continuous {
			step = want
		} else {
			if want > 0 {
				step = math.Min(want, 1)
				step = math.Ceil(step)
			} else {
				step = math.Max(want, -1)
				step = math.Floor(step)
			}
		}
		if step == 0 {
			continue
		}
		next := values[idx] + step
		if next < v.Lower-repairTol || next > v.Upper+repairTol {
			// Clip continuous moves into the domain.
			if v.Type != Continuous {
				continue
			}
			next = math.Max(v.Lower, math.Min(v.Upper, next))
			step = next - values[idx]
			if math.Abs(step) < repairTol {
				continue
			}
		}
		score := v.Cost * step / math.Abs(coeff*step)
		if score < bestScore {
			bestScore = score
			bestIdx = idx
			bestStep = step
		}
	}
	if bestIdx < 0 {
		return false
	}
	values[bestIdx] += bestStep
	return true
}

// improve performs greedy unit moves on integer variables and exact moves
// on continuous ones while they lower the objective and keep the point
// feasible.
func (r *Repair) improve(ctx context.Context, m *Model, values []float64, deadline time.Time) {
	for pass := 0; pass < 50; pass++ {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return
		}
		improved := false
		for _, v := range m.Variables() {
			if v.Cost == 0 {
				continue
			}
			step := 1.0
			if v.Cost > 0 {
				step = -1
			}
			if v.Type == Continuous {
				// Continuous deviation variables: tighten to the smallest
				// feasible value when costly.
				if v.Cost <= 0 {
					continue
				}
				old := values[v.Index]
				values[v.Index] = v.Lower
				for m.Violation(values, repairTol) > repairTol && values[v.Index] < old {
					values[v.Index] = math.Min(old, values[v.Index]+math.Max((old-v.Lower)/8, repairTol))
				}
				if values[v.Index] < old {
					improved = true
				}
				continue
			}
			next := values[v.Index] + step
			if next < v.Lower || next > v.Upper {
				continue
			}
			values[v.Index] = next
			if m.Violation(values, repairTol) > repairTol {
				values[v.Index] -= step
				continue
			}
			improved = true
		}
		if !improved {
			return
		}
	}
}
