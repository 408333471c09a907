// Package relax implements the MILP-based relaxation engine (C6): given a
// set of temporal conflicts, it finds the cheapest combination of bound
// relaxations that repairs all of them, or reports infeasibility.
package relax

import "github.com/tpnx/bcdr/internal/tpn"

// VarKey names one non-negative relaxation-amount decision variable. Bound
// is always LBMinus (shrink the lower bound) or UBPlus (expand the upper
// bound): those are the only two directions a bound is ever relaxed in.
type VarKey struct {
	Constraint tpn.ConstraintID
	Bound      tpn.BoundType
}

// Inequality is one canonicalized alternative: Coeffs·x <= RHS.
type Inequality struct {
	Coeffs map[VarKey]float64
	RHS    float64
}

// Disjunction is one conflict's set of alternative Inequalities: satisfying
// any single one repairs it.
type Disjunction struct {
	Alternatives []Inequality
}

// MILPProblem is the solver-agnostic problem description Engine builds and
// hands to a MILPSolver.
type MILPProblem struct {
	Vars        []VarKey
	LinCost     map[VarKey]float64
	Disjunctions []Disjunction
}

// MILPSolution is the optimal assignment of relaxation amounts plus the
// objective value achieved, as returned by a MILPSolver.
type MILPSolution struct {
	X         map[VarKey]float64
	Objective float64
}

// MILPSolver is the abstract contract the relaxation engine talks to. A
// nil, nil return means the problem is infeasible.
type MILPSolver interface {
	Solve(problem MILPProblem) (*MILPSolution, error)
}
