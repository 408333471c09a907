package search

import (
	"log"

	"github.com/tpnx/bcdr/internal/bcdrerr"
	"github.com/tpnx/bcdr/internal/dc"
	"github.com/tpnx/bcdr/internal/model"
	"github.com/tpnx/bcdr/internal/relax"
	"github.com/tpnx/bcdr/internal/sat"
	"github.com/tpnx/bcdr/internal/tpn"
)

// Options configures a Searcher: a struct of tunables plus a package-level
// default value.
type Options struct {
	// MaxExpansions bounds the number of node pops before giving up and
	// reporting unsatisfiable; zero means unbounded.
	MaxExpansions int64
	Logging       bool
}

// DefaultOptions leaves the search unbounded and silent.
var DefaultOptions = Options{MaxExpansions: 0, Logging: false}

// Searcher runs a best-first, conflict-directed branch-and-bound search.
// It owns the frontier, the node arena, the known-conflict anti-chain,
// and the residual-conflict map exclusively; nothing outside Run ever
// mutates them.
type Searcher struct {
	store       *model.Store
	constraints []*tpn.Constraint
	rewards     map[model.Assignment]float64
	sat         *sat.Checker
	dc          dc.Checker
	relax       *relax.Engine
	opts        Options

	frontier *Frontier
	nodes    []*Node
	known    KnownConflicts
	residual map[string][]dc.TemporalConflict

	// fatal is set by tryRepair when the MILP backend itself errors out
	// (as opposed to reporting plain infeasibility); Run surfaces it as a
	// *bcdrerr.Error of kind SolverFailure.
	fatal *bcdrerr.Error
}

// NewSearcher constructs a Searcher over a fixed problem instance.
func NewSearcher(
	store *model.Store,
	constraints []*tpn.Constraint,
	rewards map[model.Assignment]float64,
	satChecker *sat.Checker,
	dcChecker dc.Checker,
	relaxEngine *relax.Engine,
	opts Options,
) *Searcher {
	return &Searcher{
		store:       store,
		constraints: constraints,
		rewards:     rewards,
		sat:         satChecker,
		dc:          dcChecker,
		relax:       relaxEngine,
		opts:        opts,
		frontier:    NewFrontier(),
		residual:    map[string][]dc.TemporalConflict{},
	}
}

// Result is the outcome Problem.Run reports.
type Result struct {
	Solvable   bool
	Assignment map[model.VarID]model.Assignment
	Reward     float64
	Relaxation *tpn.Relaxation
	Residual   map[string][]dc.TemporalConflict
}

func (s *Searcher) newNode(parent *Node) *Node {
	var n *Node
	if parent == nil {
		n = &Node{
			Assignment:        map[model.VarID]model.Assignment{},
			ResolvedConflicts: map[string]bool{},
		}
	} else {
		n = parent.clone()
	}
	n.ID = NodeID(len(s.nodes))
	s.nodes = append(s.nodes, n)
	return n
}

func (s *Searcher) push(n *Node) {
	n.Priority = priority(n, s.rewards)
	s.frontier.Push(n.ID, n.Priority)
}

// Run executes the search loop to completion. A non-nil error is only ever
// a SolverFailure: the relaxation MILP backend itself errored out, which
// is fatal to the search (not plain infeasibility, which is an ordinary
// Result.Solvable=false outcome).
func (s *Searcher) Run() (Result, error) {
	root := s.newNode(nil)
	s.push(root)

	var expansions int64
	for {
		id, ok := s.frontier.Pop()
		if !ok {
			return Result{Solvable: false, Residual: s.residual}, nil
		}
		if s.opts.MaxExpansions > 0 && expansions >= s.opts.MaxExpansions {
			return Result{Solvable: false, Residual: s.residual}, nil
		}
		expansions++
		node := s.nodes[id]

		if s.opts.Logging {
			log.Printf("search: popped node %d priority=%.3f assigned=%d", node.ID, node.Priority, len(node.Assignment))
		}

		if conflict, ok := s.known.Manifest(node); ok {
			for _, child := range s.splitOnConflict(node, conflict) {
				s.push(child)
			}
			if s.fatal != nil {
				return Result{}, s.fatal
			}
			continue
		}

		if v, ok := s.firstUnassignedDecisionVar(node); ok {
			for _, child := range s.splitOnVariable(node, v) {
				s.push(child)
			}
			continue
		}

		assignments := assignmentSet(node.Assignment)
		ok, _, conflict := s.sat.CheckConsistency(assignments)
		if !ok {
			if s.known.Handle(newConflict(conflict)) && s.opts.Logging {
				log.Printf("search: learned boolean conflict %v", conflict)
			}
			s.push(node)
			continue
		}

		active, err := tpn.ActiveConstraints(s.constraints, assignments)
		if err != nil {
			// Label CNF conversion failures are structural and would have
			// already surfaced at problem-construction time.
			bcdrerr.LogicViolation("constraint activation failed mid-search: %v", err)
		}
		projected := tpn.Project(active, node.Relaxation)
		controllable, conflicts := s.dc.IsControllable(tpn.Network{Constraints: projected})
		if controllable {
			return Result{
				Solvable:   true,
				Assignment: node.Assignment,
				Reward:     node.Priority,
				Relaxation: node.Relaxation,
				Residual:   s.residual,
			}, nil
		}

		learned := s.projectTemporalConflict(node, conflicts)
		if s.known.Handle(learned) && s.opts.Logging {
			log.Printf("search: learned temporal-projected conflict %v", learned)
		}
		s.push(node)
	}
}

func (s *Searcher) firstUnassignedDecisionVar(n *Node) (model.VarID, bool) {
	for _, v := range s.store.DecisionVariables() {
		if _, ok := n.Assignment[v]; !ok {
			return v, true
		}
	}
	return 0, false
}

// splitOnVariable implements SPLIT-ON-VARIABLE: one child per domain value.
func (s *Searcher) splitOnVariable(n *Node, v model.VarID) []*Node {
	variable := s.store.ByID(v)
	children := make([]*Node, 0, len(variable.Domain))
	for _, d := range variable.Domain {
		child := s.newNode(n)
		child.Assignment[v] = model.Assignment{Var: v, Val: d}
		children = append(children, child)
	}
	return children
}

// splitOnConflict implements SPLIT-ON-CONFLICT: constituent kernels plus an
// attempted relaxation-based repair.
func (s *Searcher) splitOnConflict(n *Node, conflict Conflict) []*Node {
	var children []*Node
	for a := range conflict {
		variable := s.store.ByID(a.Var)
		for _, d := range variable.Domain {
			if d == a.Val {
				continue
			}
			if s.known.has(Conflict{{Var: a.Var, Val: d}: struct{}{}}) {
				continue // self-inconsistent: this single value is already known-bad.
			}
			child := s.newNode(n)
			child.Assignment[a.Var] = model.Assignment{Var: a.Var, Val: d}
			children = append(children, child)
		}
	}

	if repaired, ok := s.tryRepair(n, conflict); ok {
		children = append(children, repaired)
	}

	return children
}

// tryRepair attempts the relaxation-based repair path: DC-check the
// unrelaxed activated network, and if it's uncontrollable, ask the
// relaxation engine for a fix. A feasible fix produces an extra child with
// the same assignment, the new relaxation, and conflict marked resolved.
func (s *Searcher) tryRepair(n *Node, conflict Conflict) (*Node, bool) {
	assignments := assignmentSet(n.Assignment)
	active, err := tpn.ActiveConstraints(s.constraints, assignments)
	if err != nil {
		bcdrerr.LogicViolation("constraint activation failed mid-search: %v", err)
	}
	controllable, conflicts := s.dc.IsControllable(tpn.Network{Constraints: active})
	if controllable {
		return nil, false
	}

	relaxation, err := s.relax.Solve(conflicts)
	if err != nil {
		s.fatal = bcdrerr.SolverFailuref("relaxation solver failure: %v", err)
		return nil, false
	}
	if relaxation == nil {
		s.residual[conflictAssignmentKey(n.Assignment)] = append(s.residual[conflictAssignmentKey(n.Assignment)], conflicts...)
		return nil, false
	}

	child := s.newNode(n)
	if n.Relaxation != nil {
		relaxation = n.Relaxation.Merge(relaxation, linCostOf(s.constraints))
	}
	child.Relaxation = relaxation
	child.ResolvedConflicts[conflict.key()] = true
	return child, true
}

// projectTemporalConflict collects every decision-variable assignment in
// n.Assignment whose variable appears in any labelled constraint
// referenced by conflicts.
func (s *Searcher) projectTemporalConflict(n *Node, conflicts []dc.TemporalConflict) Conflict {
	vars := map[model.VarID]bool{}
	for _, tc := range conflicts {
		for _, ineq := range tc {
			for _, term := range ineq {
				for v := range term.Constraint.Variables() {
					vars[v] = true
				}
			}
		}
	}
	out := Conflict{}
	for v := range vars {
		if a, ok := n.Assignment[v]; ok {
			out[a] = struct{}{}
		}
	}
	if len(out) == 0 {
		// No decision variable controls the conflicting constraints'
		// activation: it is unconditionally present, so the whole
		// assignment is at fault.
		for _, a := range n.Assignment {
			out[a] = struct{}{}
		}
	}
	return out
}

func assignmentSet(m map[model.VarID]model.Assignment) map[model.Assignment]struct{} {
	out := make(map[model.Assignment]struct{}, len(m))
	for _, a := range m {
		out[a] = struct{}{}
	}
	return out
}

func conflictAssignmentKey(m map[model.VarID]model.Assignment) string {
	return newConflict(assignmentSet(m)).key()
}

func linCostOf(constraints []*tpn.Constraint) func(relax.VarKey) float64 {
	byID := make(map[tpn.ConstraintID]*tpn.Constraint, len(constraints))
	for _, c := range constraints {
		byID[c.ID] = c
	}
	return func(k relax.VarKey) float64 {
		c, ok := byID[k.Constraint]
		if !ok {
			return 0
		}
		if k.Bound == tpn.UBPlus {
			return c.UBLinCost
		}
		return c.LBLinCost
	}
}
