// Package solver provides a small mixed-integer linear programming layer:
// a generic model representation, a branch-and-bound backend driven by the
// gonum simplex, a constraint-repair heuristic backend, and a ranked
// registry that selects between them.
package solver

import (
	"fmt"
	"math"
)

// VarType classifies a decision variable.
type VarType int

const (
	Continuous VarType = iota
	Integer
	Binary
)

// Variable is one decision variable with explicit bounds and an objective
// cost coefficient. Bounds are always finite for integer and binary
// variables; the upper-bound constants are supplied by the model builder
// and documented there.
type Variable struct {
	Index int
	Name  string
	Type  VarType
	Lower float64
	Upper float64
	Cost  float64
}

// Constraint is a linear row Lower <= sum(Coeffs[i] * x[i]) <= Upper.
// Use math.Inf for one-sided rows and Lower == Upper for equalities.
type Constraint struct {
	Name   string
	Coeffs map[int]float64
	Lower  float64
	Upper  float64
}

// Model is a minimization MILP instance. It is built once per optimize
// call and never shared between concurrent solves.
type Model struct {
	vars []Variable
	cons []Constraint
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// AddVariable appends a variable and returns its index.
func (m *Model) AddVariable(name string, t VarType, lower, upper float64) int {
	if t == Binary {
		lower, upper = 0, 1
	}
	idx := len(m.vars)
	m.vars = append(m.vars, Variable{Index: idx, Name: name, Type: t, Lower: lower, Upper: upper})
	return idx
}

// SetCost sets the objective coefficient of a variable.
func (m *Model) SetCost(idx int, cost float64) {
	m.vars[idx].Cost = cost
}

// AddCost adds to the objective coefficient of a variable.
func (m *Model) AddCost(idx int, cost float64) {
	m.vars[idx].Cost += cost
}

// AddConstraint appends a ranged linear row.
func (m *Model) AddConstraint(name string, coeffs map[int]float64, lower, upper float64) {
	m.cons = append(m.cons, Constraint{Name: name, Coeffs: coeffs, Lower: lower, Upper: upper})
}

// AddEquality appends an equality row.
func (m *Model) AddEquality(name string, coeffs map[int]float64, rhs float64) {
	m.AddConstraint(name, coeffs, rhs, rhs)
}

// AddLessEqual appends a row sum <= rhs.
func (m *Model) AddLessEqual(name string, coeffs map[int]float64, rhs float64) {
	m.AddConstraint(name, coeffs, math.Inf(-1), rhs)
}

// AddGreaterEqual appends a row sum >= rhs.
func (m *Model) AddGreaterEqual(name string, coeffs map[int]float64, rhs float64) {
	m.AddConstraint(name, coeffs, rhs, math.Inf(1))
}

// NumVariables returns the number of decision variables.
func (m *Model) NumVariables() int { return len(m.vars) }

// NumConstraints returns the number of linear rows.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Variables returns the variable slice. Callers must not mutate it.
func (m *Model) Variables() []Variable { return m.vars }

// Constraints returns the constraint slice. Callers must not mutate it.
func (m *Model) Constraints() []Constraint { return m.cons }

// Objective evaluates the objective at the given point.
func (m *Model) Objective(values []float64) float64 {
	var total float64
	for _, v := range m.vars {
		total += v.Cost * values[v.Index]
	}
	return total
}

// Violation returns the total constraint and bound violation at the given
// point. Zero means the point is feasible (up to tol).
func (m *Model) Violation(values []float64, tol float64) float64 {
	var total float64
	for _, v := range m.vars {
		if values[v.Index] < v.Lower-tol {
			total += v.Lower - values[v.Index]
		}
		if values[v.Index] > v.Upper+tol {
			total += values[v.Index] - v.Upper
		}
	}
	for _, c := range m.cons {
		act := c.Activity(values)
		if act < c.Lower-tol {
			total += c.Lower - act
		}
		if act > c.Upper+tol {
			total += act - c.Upper
		}
	}
	return total
}

// Activity evaluates the row at the given point.
func (c *Constraint) Activity(values []float64) float64 {
	var act float64
	for idx, coeff := range c.Coeffs {
		act += coeff * values[idx]
	}
	return act
}

// Status is the terminal state of one backend run.
type Status int

const (
	// StatusOptimal means the search proved optimality.
	StatusOptimal Status = iota
	// StatusFeasible means an incumbent exists but the search stopped on
	// the gap target, the timeout, or cancellation.
	StatusFeasible
	// StatusInfeasible means the model has no integer-feasible point.
	StatusInfeasible
	// StatusTimedOut means the deadline passed with no incumbent.
	StatusTimedOut
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Solution is the result of one backend run.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	// Gap is the relative distance between the incumbent and the best
	// known lower bound when the search stopped early.
	Gap float64
}

// Usable reports whether the solution carries a point worth extracting.
func (s *Solution) Usable() bool {
	return s != nil && (s.Status == StatusOptimal || s.Status == StatusFeasible)
}
