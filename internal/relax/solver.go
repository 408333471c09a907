package relax

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// GonumSolver is the bundled default MILPSolver. Integrality in this
// engine is confined to the per-conflict disjunction-selector indicators,
// never to the relaxation amounts themselves, so GonumSolver specializes
// general branch-and-bound to combinatorial enumeration: it tries every
// combination of "which alternative is selected per conflict" and solves
// the resulting continuous LP with gonum's simplex, keeping the cheapest
// feasible combination. Selecting more than one alternative per conflict
// can only add constraints, never lower the objective, so enumerating
// "exactly one selected" combinations is sufficient to find the optimum.
type GonumSolver struct {
	opts Options
}

// NewGonumSolver constructs a GonumSolver.
func NewGonumSolver(opts Options) *GonumSolver {
	return &GonumSolver{opts: opts}
}

func (s *GonumSolver) Solve(problem MILPProblem) (*MILPSolution, error) {
	nConflicts := len(problem.Disjunctions)
	if nConflicts == 0 {
		return &MILPSolution{X: map[VarKey]float64{}, Objective: 0}, nil
	}

	counts := make([]int, nConflicts)
	for i, d := range problem.Disjunctions {
		counts[i] = len(d.Alternatives)
		if counts[i] == 0 {
			return nil, nil
		}
	}

	var best *MILPSolution
	choice := make([]int, nConflicts)
	for {
		sol := s.solveCombination(problem, choice)
		if sol != nil && (best == nil || sol.Objective < best.Objective) {
			best = sol
		}
		if !nextChoice(choice, counts) {
			break
		}
	}
	return best, nil
}

// nextChoice advances choice to the next combination in odometer order,
// returning false once every combination has been visited.
func nextChoice(choice, counts []int) bool {
	for i := len(choice) - 1; i >= 0; i-- {
		choice[i]++
		if choice[i] < counts[i] {
			return true
		}
		choice[i] = 0
	}
	return false
}

func (s *GonumSolver) solveCombination(problem MILPProblem, choice []int) *MILPSolution {
	nVars := len(problem.Vars)
	idx := make(map[VarKey]int, nVars)
	for i, v := range problem.Vars {
		idx[v] = i
	}

	nRows := len(problem.Disjunctions)
	if nVars == 0 {
		for i, d := range problem.Disjunctions {
			if d.Alternatives[choice[i]].RHS < 0 {
				return nil
			}
		}
		return &MILPSolution{X: map[VarKey]float64{}, Objective: 0}
	}

	// Each row gets its own slack column: coeffs.x + slack = rhs, slack >= 0.
	nCols := nVars + nRows
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	for i, v := range problem.Vars {
		c[i] = problem.LinCost[v]
	}

	for row, di := range problem.Disjunctions {
		ineq := di.Alternatives[choice[row]]
		if ineq.RHS < 0 && len(ineq.Coeffs) == 0 {
			return nil
		}
		for k, coeff := range ineq.Coeffs {
			a.Set(row, idx[k], coeff)
		}
		a.Set(row, nVars+row, 1)
		b[row] = ineq.RHS
	}

	obj, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return nil
	}

	out := map[VarKey]float64{}
	for i, v := range problem.Vars {
		out[v] = x[i]
	}
	return &MILPSolution{X: out, Objective: obj}
}
