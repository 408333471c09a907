// Package bcdr implements a hybrid constraint-and-temporal-planning
// solver: finite-domain decision variables with rewards, propositional
// constraints over them, and a labelled temporal plan network whose
// bounds may be relaxed at a linear cost, searched with a best-first,
// conflict-directed branch-and-bound loop.
package bcdr

import (
	"github.com/tpnx/bcdr/internal/bcdrerr"
	"github.com/tpnx/bcdr/internal/cnf"
	"github.com/tpnx/bcdr/internal/dc"
	"github.com/tpnx/bcdr/internal/model"
	"github.com/tpnx/bcdr/internal/relax"
	"github.com/tpnx/bcdr/internal/sat"
	"github.com/tpnx/bcdr/internal/search"
	"github.com/tpnx/bcdr/internal/tpn"
)

// Problem accumulates variables, propositional constraints, and temporal
// constraints, then searches for a reward-maximizing, temporally
// controllable solution.
type Problem struct {
	store       *model.Store
	constraints []model.Expr // raw propositional constraints, typed
	temporal    []*tpn.Constraint
	rewards     map[model.Assignment]float64

	relaxOpts  relax.Options
	searchOpts search.Options
	dcChecker  dc.Checker
	milpSolver relax.MILPSolver
}

// New returns an empty Problem configured with the bundled default DC
// checker (STNChecker) and relaxation solver (GonumSolver).
func New() *Problem {
	return &Problem{
		store:      model.NewStore(),
		rewards:    map[model.Assignment]float64{},
		relaxOpts:  relax.DefaultOptions,
		searchOpts: search.DefaultOptions,
		dcChecker:  dc.STNChecker{},
	}
}

// Options lets a caller override the search/relaxation tunables before
// calling Run. Alternative DC/MILP backends are set with SetDCChecker and
// SetMILPSolver.
func (p *Problem) Options(searchOpts search.Options, relaxOpts relax.Options) {
	p.searchOpts = searchOpts
	p.relaxOpts = relaxOpts
}

// SetDCChecker overrides the bundled STNChecker.
func (p *Problem) SetDCChecker(c dc.Checker) { p.dcChecker = c }

// SetMILPSolver overrides the bundled GonumSolver.
func (p *Problem) SetMILPSolver(s relax.MILPSolver) { p.milpSolver = s }

// AddVariable declares a new variable. domain must be nil for Binary
// variables; a non-nil domain for one is a Declaration error.
func (p *Problem) AddVariable(name string, kind model.Kind, domain []string, isDecision bool) (*model.Variable, error) {
	return p.store.Add(name, kind, domain, isDecision)
}

// AddReward records the reward earned when variable `name` is assigned
// value `val` in the accepted solution.
func (p *Problem) AddReward(name, val string, reward float64) error {
	v, ok := p.store.ByName(name)
	if !ok {
		return bcdrerr.Declarationf("unknown variable %q", name)
	}
	a, err := p.store.GetAssignment(v.ID, val)
	if err != nil {
		return err
	}
	p.rewards[a] = reward
	return nil
}

// AddConstraint parses, typechecks, and records a propositional constraint
// over already-declared variables.
func (p *Problem) AddConstraint(expression string) error {
	e, err := model.ParseExpression(expression)
	if err != nil {
		return err
	}
	typed, err := model.Typecheck(e, p.store)
	if err != nil {
		return err
	}
	p.constraints = append(p.constraints, typed)
	return nil
}

// TemporalConstraintSpec groups AddTemporalConstraint's named arguments.
type TemporalConstraintSpec struct {
	Start, End               string
	Label                    string // "" => unconditionally active
	LB, UB                   float64
	Name                     string
	LBRelaxable, UBRelaxable bool
	LBLinCost, UBLinCost     float64
}

// AddTemporalConstraint records a labelled temporal constraint between two
// named events.
func (p *Problem) AddTemporalConstraint(spec TemporalConstraintSpec) error {
	var label model.Expr
	if spec.Label != "" {
		e, err := model.ParseExpression(spec.Label)
		if err != nil {
			return err
		}
		typed, err := model.Typecheck(e, p.store)
		if err != nil {
			return err
		}
		label = typed
	}
	p.temporal = append(p.temporal, &tpn.Constraint{
		ID:          tpn.ConstraintID(len(p.temporal)),
		Start:       spec.Start,
		End:         spec.End,
		Name:        spec.Name,
		Label:       label,
		LB:          spec.LB,
		UB:          spec.UB,
		LBRelaxable: spec.LBRelaxable,
		UBRelaxable: spec.UBRelaxable,
		LBLinCost:   spec.LBLinCost,
		UBLinCost:   spec.UBLinCost,
	})
	return nil
}

// Run searches for a reward-maximizing, temporally controllable solution.
// A non-nil error means the relaxation MILP backend itself failed;
// plain unsatisfiability is reported through Result.Solvable == false,
// not an error.
func (p *Problem) Run() (search.Result, error) {
	allExprs := append([]model.Expr{}, p.constraints...)
	allExprs = append(allExprs, model.StructuralConstraints(p.store)...)

	clauses, err := cnf.ToCNF(allExprs)
	if err != nil {
		return search.Result{}, err
	}

	allAtoms := map[model.Assignment]struct{}{}
	for _, v := range p.store.All() {
		for _, d := range v.Domain {
			a, err := p.store.GetAssignment(v.ID, d)
			if err != nil {
				return search.Result{}, err
			}
			allAtoms[a] = struct{}{}
		}
	}

	satChecker := sat.NewChecker(clauses, allAtoms, p.store)

	solver := p.milpSolver
	if solver == nil {
		solver = relax.NewGonumSolver(p.relaxOpts)
	}
	engine := relax.NewEngine(solver, p.relaxOpts)

	searcher := search.NewSearcher(p.store, p.temporal, p.rewards, satChecker, p.dcChecker, engine, p.searchOpts)
	return searcher.Run()
}
