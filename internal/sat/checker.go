// Package sat implements a DPLL-based Boolean consistency checker: unit
// propagation with support tracing for conflict extraction, falling back
// to full DPLL search when unit propagation alone cannot decide
// satisfiability. The unit-propagation worklist uses a power-of-two
// ring-buffer Queue[T] (queue.go); "already assigned" bookkeeping uses a
// plain map[cnf.Literal]struct{} since literals here are keyed by
// (variable, value) pairs rather than a dense packed-int range, which
// rules out a timestamp-indexed reset set.
package sat

import (
	"github.com/tpnx/bcdr/internal/bcdrerr"
	"github.com/tpnx/bcdr/internal/cnf"
	"github.com/tpnx/bcdr/internal/model"
)

// Checker holds the CNF clause pool derived from a problem's propositional
// constraints (including the implicit structural ones) plus the full set
// of atoms (assignments) that may need a truth value.
type Checker struct {
	baseClauses []*cnf.Clause
	allAtoms    map[model.Assignment]struct{}
	store       *model.Store
}

// NewChecker builds a Checker from the problem's already-CNF-converted
// clause pool, the full list of possible atoms (one per (variable, value)
// pair), and the variable store used to tell decision variables apart
// from auxiliary ones when extracting a conflict.
func NewChecker(baseClauses []*cnf.Clause, allAtoms map[model.Assignment]struct{}, store *model.Store) *Checker {
	return &Checker{baseClauses: baseClauses, allAtoms: allAtoms, store: store}
}

// isDecision reports whether a is an assignment to a decision variable.
func (c *Checker) isDecision(a model.Assignment) bool {
	v := c.store.ByID(a.Var)
	return v != nil && v.IsDecision
}

// CheckConsistency checks a partial assignment for consistency: given
// (as decision-variable Assignments), it extends the clause pool with unit
// clauses asserting each input assignment, runs unit propagation, and on
// failure traces supports back to an assignment-level conflict; on success
// it recursively falls back to DPLL search. Returns (true, model, nil) on
// success or (false, nil, conflict) on failure.
func (c *Checker) CheckConsistency(assignments map[model.Assignment]struct{}) (bool, map[model.Assignment]struct{}, map[model.Assignment]struct{}) {
	clauses := copyClauses(c.baseClauses)
	for a := range assignments {
		lit := cnf.Literal{Atom: a, Positive: true}
		unit, _ := cnf.NewClause([]cnf.Literal{lit}, len(clauses))
		clauses = append(clauses, unit)
	}

	assigned, workingClauses, conflict := c.unitPropagate(clauses, nil, true)
	if assigned == nil {
		decisionConflict := map[model.Assignment]struct{}{}
		for l := range conflict {
			if _, given := assignments[l.Atom]; !given {
				continue // derived during propagation, not part of the probed assignment
			}
			if l.Positive && c.isDecision(l.Atom) {
				decisionConflict[l.Atom] = struct{}{}
			}
		}
		return false, nil, decisionConflict
	}

	satModel, ok := c.dpll(workingClauses, assigned)
	if !ok {
		// Coarse fallback conflict: the entry-level assignments themselves.
		return false, nil, assignments
	}
	out := map[model.Assignment]struct{}{}
	for l := range satModel {
		if l.Positive {
			out[l.Atom] = struct{}{}
		}
	}
	return true, out, nil
}

// dpll chooses an unassigned atom and tries both polarities, recursing
// after re-running unit propagation.
func (c *Checker) dpll(clauses []*cnf.Clause, assigned map[cnf.Literal]struct{}) (map[cnf.Literal]struct{}, bool) {
	next, workingClauses, conflict := c.unitPropagate(clauses, assigned, false)
	_ = conflict
	if next == nil {
		return nil, false
	}

	atom, ok := c.chooseUnassignedAtom(next)
	if !ok {
		return next, true // every atom assigned: satisfying model found
	}

	for _, polarity := range []bool{false, true} {
		lit := cnf.Literal{Atom: atom, Positive: polarity}
		candidate := copyLitSet(next)
		candidate[lit] = struct{}{}
		if res, ok := c.dpll(workingClauses, candidate); ok {
			return res, true
		}
	}
	return nil, false
}

// unitPropagate removes already-satisfied clauses, strips falsified
// literals from the rest, and repeatedly resolves unit clauses via a
// FIFO worklist (Queue[cnf.Literal]), recording a support clause per
// newly-derived
// literal so that an eventual empty clause can be traced back to its
// originating decision-variable assignments.
func (c *Checker) unitPropagate(clauses []*cnf.Clause, assigned map[cnf.Literal]struct{}, extractConflict bool) (map[cnf.Literal]struct{}, []*cnf.Clause, map[cnf.Literal]struct{}) {
	working := copyClauses(clauses)
	current := copyLitSet(assigned)
	support := map[cnf.Literal]*cnf.Clause{}

	working = removeSatisfied(working, current)
	for _, cl := range working {
		for l := range current {
			cl.RemoveFalseLiteral(l)
		}
	}

	q := NewQueue[*cnf.Clause](8)
	for _, cl := range working {
		if cl.Len() == 1 {
			q.Push(cl)
		}
	}

	for q.Size() > 0 {
		cl := q.Pop()
		for l := range current {
			cl.RemoveFalseLiteral(l)
		}
		switch cl.Len() {
		case 1:
			lit := cl.OnlyLiteral()
			if _, ok := current[lit]; ok {
				bcdrerr.LogicViolation("literal %v assigned twice during unit propagation", lit)
			}
			if _, ok := support[lit]; ok {
				bcdrerr.LogicViolation("literal %v re-derived during unit propagation", lit)
			}
			current[lit] = struct{}{}
			support[lit] = cl
			working = removeSatisfied(working, current)

			// Rebuild the queue: drop satisfied entries, enqueue newly-unit
			// clauses that mention the negation of the literal just assigned.
			remaining := NewQueue[*cnf.Clause](8)
			for q.Size() > 0 {
				pending := q.Pop()
				if _, ok := pending.Literals[lit]; ok {
					continue // now satisfied
				}
				remaining.Push(pending)
			}
			q = remaining

			neg := lit.Complement()
			for _, cl2 := range working {
				if _, ok := cl2.Literals[neg]; ok {
					q.Push(cl2)
				}
			}
		case 0:
			if extractConflict {
				conf := c.traceSupports(cl, support)
				return nil, nil, conf
			}
			return nil, nil, nil
		}
	}

	return current, working, nil
}

// traceSupports walks backward from an empty clause's original literal
// set to the decision-variable assignments that forced it: starting from
// the empty clause's original literal set, it recursively follows
// supports of the complements of its literals, accumulating literals
// that are positive assignments to decision variables.
func (c *Checker) traceSupports(emptyClause *cnf.Clause, support map[cnf.Literal]*cnf.Clause) map[cnf.Literal]struct{} {
	out := map[cnf.Literal]struct{}{}
	visited := map[cnf.Literal]struct{}{}
	var walk func(cl *cnf.Clause)
	walk = func(cl *cnf.Clause) {
		for l := range cl.LiteralsOriginal {
			neg := l.Complement()
			if _, seen := visited[neg]; seen {
				continue
			}
			supportClause, ok := support[neg]
			if !ok {
				continue
			}
			visited[neg] = struct{}{}
			if neg.Positive && c.isDecision(neg.Atom) {
				out[neg] = struct{}{}
			}
			walk(supportClause)
		}
	}
	walk(emptyClause)
	return out
}

func (c *Checker) chooseUnassignedAtom(assigned map[cnf.Literal]struct{}) (model.Assignment, bool) {
	seen := map[model.Assignment]struct{}{}
	for l := range assigned {
		seen[l.Atom] = struct{}{}
	}
	for a := range c.allAtoms {
		if _, ok := seen[a]; !ok {
			return a, true
		}
	}
	return model.Assignment{}, false
}

func removeSatisfied(clauses []*cnf.Clause, assigned map[cnf.Literal]struct{}) []*cnf.Clause {
	out := clauses[:0]
	for _, cl := range clauses {
		if !cl.IsSatisfiedBy(assigned) {
			out = append(out, cl)
		}
	}
	return out
}

func copyClauses(clauses []*cnf.Clause) []*cnf.Clause {
	out := make([]*cnf.Clause, len(clauses))
	for i, cl := range clauses {
		out[i] = cl.Copy()
	}
	return out
}

func copyLitSet(s map[cnf.Literal]struct{}) map[cnf.Literal]struct{} {
	out := make(map[cnf.Literal]struct{}, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	return out
}
