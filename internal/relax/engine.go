package relax

import (
	"github.com/tpnx/bcdr/internal/dc"
	"github.com/tpnx/bcdr/internal/tpn"
)

// Options configures an Engine: a struct of tunables plus a package-level
// default value.
type Options struct {
	// BigM is the upper bound every relaxation amount is clipped to when
	// read back from the solver. GonumSolver selects disjunction
	// alternatives by enumeration and does not use BigM.
	BigM float64
	// Epsilon is the strict-feasibility margin, kept strictly greater
	// than the underlying solver's own tolerance.
	Epsilon float64
	// RoundDigits is the precision relaxation amounts are rounded to on
	// read.
	RoundDigits int
}

// DefaultOptions is the bundled numerical policy: M = 1e5, epsilon =
// 1e-4, three decimal digits.
var DefaultOptions = Options{
	BigM:        1e5,
	Epsilon:     1e-4,
	RoundDigits: 3,
}

// Engine builds and solves the disjunctive relaxation MILP for a set of
// temporal conflicts.
type Engine struct {
	opts   Options
	solver MILPSolver
}

// NewEngine constructs an Engine backed by the given solver.
func NewEngine(solver MILPSolver, opts Options) *Engine {
	return &Engine{opts: opts, solver: solver}
}

// NewDefaultEngine constructs an Engine using DefaultOptions and the
// bundled GonumSolver.
func NewDefaultEngine() *Engine {
	return &Engine{opts: DefaultOptions, solver: NewGonumSolver(DefaultOptions)}
}

// Solve builds the MILP for conflicts and returns the cheapest repairing
// Relaxation, or nil if no combination of relaxations repairs every
// conflict.
func (e *Engine) Solve(conflicts []dc.TemporalConflict) (*tpn.Relaxation, error) {
	problem := e.buildProblem(conflicts)
	sol, err := e.solver.Solve(problem)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, nil
	}
	out := &tpn.Relaxation{
		Sol:       make(map[tpn.RelaxKey]float64, len(sol.X)),
		Objective: round(sol.Objective, e.opts.RoundDigits),
	}
	for k, v := range sol.X {
		v = clip(v, 0, e.opts.BigM)
		out.Sol[tpn.RelaxKey{Constraint: k.Constraint, Bound: k.Bound}] = round(v, e.opts.RoundDigits)
	}
	return out, nil
}

func (e *Engine) buildProblem(conflicts []dc.TemporalConflict) MILPProblem {
	linCost := map[VarKey]float64{}
	seen := map[VarKey]bool{}
	var vars []VarKey

	addVar := func(k VarKey, cost float64) {
		if seen[k] {
			return
		}
		seen[k] = true
		vars = append(vars, k)
		linCost[k] = cost
	}

	var disjunctions []Disjunction
	for _, conflict := range conflicts {
		var alts []Inequality
		for _, ineq := range conflict {
			coeffs := map[VarKey]float64{}
			var constant float64
			for _, term := range ineq {
				c := term.Constraint
				switch term.Bound {
				case tpn.UBPlus:
					constant += c.UB
					if c.UBRelaxable {
						k := VarKey{Constraint: c.ID, Bound: tpn.UBPlus}
						addVar(k, c.UBLinCost)
						coeffs[k] += 1
					}
				case tpn.UBMinus:
					constant -= c.UB
					if c.UBRelaxable {
						k := VarKey{Constraint: c.ID, Bound: tpn.UBPlus}
						addVar(k, c.UBLinCost)
						coeffs[k] -= 1
					}
				case tpn.LBPlus:
					constant += c.LB
					if c.LBRelaxable {
						k := VarKey{Constraint: c.ID, Bound: tpn.LBMinus}
						addVar(k, c.LBLinCost)
						coeffs[k] -= 1
					}
				case tpn.LBMinus:
					constant -= c.LB
					if c.LBRelaxable {
						k := VarKey{Constraint: c.ID, Bound: tpn.LBMinus}
						addVar(k, c.LBLinCost)
						coeffs[k] += 1
					}
				}
			}
			// The accumulated table above gives the inequality in
			// "coeffs·x >= eps - constant" form; canonicalize to <= by
			// negating the coefficients.
			negated := make(map[VarKey]float64, len(coeffs))
			for k, v := range coeffs {
				negated[k] = -v
			}
			alts = append(alts, Inequality{
				Coeffs: negated,
				RHS:    constant - e.opts.Epsilon,
			})
		}
		disjunctions = append(disjunctions, Disjunction{Alternatives: alts})
	}

	return MILPProblem{
		Vars:         vars,
		LinCost:      linCost,
		Disjunctions: disjunctions,
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64, digits int) float64 {
	scale := 1.0
	for i := 0; i < digits; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+signOf(v)*0.5)) / scale
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
