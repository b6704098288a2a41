package solver

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	intTol   = 1e-6
	lpTol    = 1e-9
	boundEps = 1e-9
)

// BranchBound is the primary MILP backend: best-first branch and bound
// over LP relaxations solved with the gonum simplex.
type BranchBound struct {
	logger *zap.Logger
}

// NewBranchBound creates the branch-and-bound backend.
func NewBranchBound(logger *zap.Logger) (*BranchBound, error) {
	return &BranchBound{logger: logger.Named("solver-bnb")}, nil
}

// Name implements Backend.
func (b *BranchBound) Name() string { return "branch-and-bound" }

// node is one open subproblem. Bound overrides narrow variable domains
// along the branching path.
type node struct {
	lower map[int]float64
	upper map[int]float64
	// bound is the LP objective of the parent relaxation, a valid lower
	// bound for every descendant.
	bound float64
}

// Solve implements Backend. Cancellation through ctx is advisory: the
// search stops at the next node boundary and returns the best incumbent
// found so far.
func (b *BranchBound) Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	deadline := time.Now().Add(opts.Timeout)

	root := &node{lower: map[int]float64{}, upper: map[int]float64{}, bound: math.Inf(-1)}
	open := []*node{root}

	var incumbent []float64
	incumbentObj := math.Inf(1)
	nodes := 0

	bestBound := func() float64 {
		best := math.Inf(1)
		for _, n := range open {
			if n.bound < best {
				best = n.bound
			}
		}
		return best
	}
	gap := func() float64 {
		if len(open) == 0 || math.IsInf(incumbentObj, 1) {
			return 0
		}
		lb := bestBound()
		if math.IsInf(lb, -1) {
			return math.Inf(1)
		}
		return (incumbentObj - lb) / math.Max(math.Abs(incumbentObj), 1)
	}
	finish := func(status Status) *Solution {
		return &Solution{Status: status, Values: incumbent, Objective: incumbentObj, Gap: gap()}
	}

	// Seed the search with a rounding dive so pruning starts before the
	// tree grows. Without an early incumbent, best-first exploration of a
	// multi-day model can exhaust the budget before the first integer
	// point appears.
	if point, obj, ok := b.dive(ctx, m, deadline); ok {
		incumbent = point
		incumbentObj = obj
		b.logger.Debug("dive found initial incumbent", zap.Float64("objective", obj))
	} else if seeder, err := NewRepair(b.logger); err == nil {
		// The dive dead-ended; borrow the repair heuristic for a seed.
		sol, err := seeder.Solve(ctx, m, Options{Timeout: time.Until(deadline) / 4})
		if err == nil && sol.Usable() {
			incumbent = sol.Values
			incumbentObj = m.Objective(sol.Values)
			b.logger.Debug("repair heuristic seeded incumbent", zap.Float64("objective", incumbentObj))
		}
	}

	for len(open) > 0 {
		if time.Now().After(deadline) || ctx.Err() != nil {
			if incumbent != nil {
				return finish(StatusFeasible), nil
			}
			return &Solution{Status: StatusTimedOut}, nil
		}

		// Best-first: pop the node with the smallest parent bound.
		best := 0
		for i, n := range open {
			if n.bound < open[best].bound {
				best = i
			}
		}
		cur := open[best]
		open = append(open[:best], open[best+1:]...)
		nodes++

		if cur.bound >= incumbentObj-boundEps {
			continue
		}

		relaxObj, relaxX, err := b.solveRelaxation(m, cur)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				continue
			}
			return nil, err
		}
		if relaxObj >= incumbentObj-boundEps {
			continue
		}

		branchVar := fractionalVariable(m, relaxX)
		if branchVar < 0 {
			// Integer feasible: new incumbent.
			incumbent = roundIntegers(m, relaxX)
			incumbentObj = m.Objective(incumbent)
			if g := gap(); g <= opts.RelativeGap {
				if len(open) == 0 {
					return finish(StatusOptimal), nil
				}
				b.logger.Debug("stopping within gap",
					zap.Float64("gap", g),
					zap.Int("nodes", nodes),
				)
				return finish(StatusFeasible), nil
			}
			continue
		}

		val := relaxX[branchVar]
		down := &node{lower: cloneBounds(cur.lower), upper: cloneBounds(cur.upper), bound: relaxObj}
		down.upper[branchVar] = math.Floor(val)
		up := &node{lower: cloneBounds(cur.lower), upper: cloneBounds(cur.upper), bound: relaxObj}
		up.lower[branchVar] = math.Ceil(val)
		open = append(open, down, up)
	}

	if incumbent == nil {
		return &Solution{Status: StatusInfeasible}, nil
	}
	return finish(StatusOptimal), nil
}

// dive hunts for one integer-feasible point: it solves the root
// relaxation, then repeatedly fixes the most fractional integer variable
// to its nearest integer and re-solves, flipping once to the other
// neighbor when the fix makes the relaxation infeasible. It gives up at
// the first dead end; the incumbent it finds is a seed, not an optimum.
func (b *BranchBound) dive(ctx context.Context, m *Model, deadline time.Time) ([]float64, float64, bool) {
	nd := &node{lower: map[int]float64{}, upper: map[int]float64{}}
	_, x, err := b.solveRelaxation(m, nd)
	if err != nil {
		return nil, 0, false
	}

	// Each step fixes one integer variable, so the variable count bounds
	// the dive depth.
	for step := 0; step <= m.NumVariables(); step++ {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return nil, 0, false
		}
		bv := fractionalVariable(m, x)
		if bv < 0 {
			point := roundIntegers(m, x)
			return point, m.Objective(point), true
		}

		near := math.Round(x[bv])
		fixed := fixVariable(nd, bv, near)
		_, fx, ferr := b.solveRelaxation(m, fixed)
		if ferr != nil {
			flip := near + 1
			if near > x[bv] {
				flip = near - 1
			}
			fixed = fixVariable(nd, bv, flip)
			_, fx, ferr = b.solveRelaxation(m, fixed)
			if ferr != nil {
				return nil, 0, false
			}
		}
		nd, x = fixed, fx
	}
	return nil, 0, false
}

func fixVariable(nd *node, idx int, val float64) *node {
	out := &node{lower: cloneBounds(nd.lower), upper: cloneBounds(nd.upper)}
	out.lower[idx] = val
	out.upper[idx] = val
	return out
}

// solveRelaxation solves the LP relaxation of the model with the node's
// bound overrides. The model is converted to standard form by shifting
// every variable to its lower bound and adding one slack per inequality
// row, then handed to the gonum simplex.
func (b *BranchBound) solveRelaxation(m *Model, nd *node) (float64, []float64, error) {
	n := m.NumVariables()
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i, v := range m.Variables() {
		lower[i] = v.Lower
		upper[i] = v.Upper
		if l, ok := nd.lower[i]; ok && l > lower[i] {
			lower[i] = l
		}
		if u, ok := nd.upper[i]; ok && u < upper[i] {
			upper[i] = u
		}
		if lower[i] > upper[i]+boundEps {
			return 0, nil, lp.ErrInfeasible
		}
	}

	// Collect one-sided rows over the shifted variables y = x - lower.
	type row struct {
		coeffs map[int]float64
		rhs    float64
		// sense: +1 for <=, -1 for >=, 0 for ==
		sense int
	}
	var rows []row
	shift := func(coeffs map[int]float64, bound float64) float64 {
		for idx, c := range coeffs {
			bound -= c * lower[idx]
		}
		return bound
	}
	for i := range m.Constraints() {
		c := &m.Constraints()[i]
		if c.Lower == c.Upper {
			rows = append(rows, row{coeffs: c.Coeffs, rhs: shift(c.Coeffs, c.Lower), sense: 0})
			continue
		}
		if !math.IsInf(c.Upper, 1) {
			rows = append(rows, row{coeffs: c.Coeffs, rhs: shift(c.Coeffs, c.Upper), sense: +1})
		}
		if !math.IsInf(c.Lower, -1) {
			rows = append(rows, row{coeffs: c.Coeffs, rhs: shift(c.Coeffs, c.Lower), sense: -1})
		}
	}
	// Variable upper bounds become rows; lower bounds are y >= 0.
	// Unbounded-above variables simply get no row.
	for i := 0; i < n; i++ {
		if math.IsInf(upper[i], 1) {
			continue
		}
		rows = append(rows, row{coeffs: map[int]float64{i: 1}, rhs: upper[i] - lower[i], sense: +1})
	}

	slacks := 0
	for _, r := range rows {
		if r.sense != 0 {
			slacks++
		}
	}
	cols := n + slacks
	dense := mat.NewDense(len(rows), cols, nil)
	rhs := make([]float64, len(rows))
	slack := n
	for ri, r := range rows {
		for idx, coeff := range r.coeffs {
			dense.Set(ri, idx, coeff)
		}
		rhs[ri] = r.rhs
		switch r.sense {
		case +1:
			dense.Set(ri, slack, 1)
			slack++
		case -1:
			dense.Set(ri, slack, -1)
			slack++
		}
	}

	cost := make([]float64, cols)
	var offset float64
	for _, v := range m.Variables() {
		cost[v.Index] = v.Cost
		offset += v.Cost * lower[v.Index]
	}

	obj, point, err := lp.Simplex(cost, dense, rhs, lpTol, nil)
	if err != nil {
		return 0, nil, err
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = point[i] + lower[i]
	}
	return obj + offset, x, nil
}

// fractionalVariable returns the integer variable farthest from integrality,
// or -1 when the point is integer feasible.
func fractionalVariable(m *Model, x []float64) int {
	best := -1
	bestDist := intTol
	for _, v := range m.Variables() {
		if v.Type == Continuous {
			continue
		}
		frac := x[v.Index] - math.Floor(x[v.Index])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			bestDist = dist
			best = v.Index
		}
	}
	return best
}

func roundIntegers(m *Model, x []float64) []float64 {
	out := append([]float64(nil), x...)
	for _, v := range m.Variables() {
		if v.Type != Continuous {
			out[v.Index] = math.Round(out[v.Index])
		}
	}
	return out
}

func cloneBounds(in map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
