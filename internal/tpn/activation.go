package tpn

import (
	"github.com/tpnx/bcdr/internal/cnf"
	"github.com/tpnx/bcdr/internal/model"
)

// IsActivated reports whether constraint c is active under the given
// assignment: true unconditionally when c has no label; otherwise true
// iff every clause of the label's (memoized) CNF conversion is satisfied
// by the positive literals `{(a, true): a in assignment}`. IsActivated is
// a pure function of (c, assignment): the CNF memoization is an
// implementation detail that never depends on which assignment is being
// tested.
func (c *Constraint) IsActivated(assignment map[model.Assignment]struct{}) (bool, error) {
	if c.Label == nil {
		return true, nil
	}
	clauses, err := c.cachedLabelCNF()
	if err != nil {
		return false, err
	}
	trueLits := make(map[cnf.Literal]struct{}, len(assignment))
	for a := range assignment {
		trueLits[cnf.Literal{Atom: a, Positive: true}] = struct{}{}
	}
	for _, cl := range clauses {
		if !cl.IsSatisfiedBy(trueLits) {
			return false, nil
		}
	}
	return true, nil
}

// ActiveConstraints filters constraints to those activated under the
// given assignment.
func ActiveConstraints(constraints []*Constraint, assignment map[model.Assignment]struct{}) ([]*Constraint, error) {
	var active []*Constraint
	for _, c := range constraints {
		ok, err := c.IsActivated(assignment)
		if err != nil {
			return nil, err
		}
		if ok {
			active = append(active, c)
		}
	}
	return active, nil
}
