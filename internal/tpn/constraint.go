// Package tpn implements the Temporal Plan Network model (C4): labelled
// temporal constraints with lower/upper bounds and relaxability
// annotations, plus activation and relaxation projection (C5).
package tpn

import (
	"github.com/tpnx/bcdr/internal/cnf"
	"github.com/tpnx/bcdr/internal/model"
)

// ConstraintID is a stable arena index, mirroring model.VarID.
type ConstraintID int

// BoundType discriminates which bound a relaxation or conflict term refers
// to and in which direction: LB+, LB-, UB+, UB-.
type BoundType int

const (
	LBPlus BoundType = iota
	LBMinus
	UBPlus
	UBMinus
)

func (b BoundType) String() string {
	switch b {
	case LBPlus:
		return "LB+"
	case LBMinus:
		return "LB-"
	case UBPlus:
		return "UB+"
	case UBMinus:
		return "UB-"
	default:
		return "?"
	}
}

// Constraint is a single labelled temporal constraint between two named
// events. When Label is non-nil, the constraint only constrains the
// network while Label is entailed by the current assignment; LB/UB are
// otherwise unconditionally in force.
type Constraint struct {
	ID    ConstraintID
	Start string
	End   string
	Name  string

	Label model.Expr // nil => unconditionally active

	LB, UB float64

	LBRelaxable, UBRelaxable bool
	LBLinCost, UBLinCost     float64

	// labelCNF memoizes the CNF conversion of Label, computed lazily on
	// first IsActivated call so repeated activation checks against
	// different assignments don't reconvert the same expression (the
	// label is immutable once the constraint is added to a Problem).
	labelCNF []*cnf.Clause
}

// Variables returns the set of variable IDs referenced by this
// constraint's label (empty for an unconditional constraint).
func (c *Constraint) Variables() map[model.VarID]struct{} {
	out := map[model.VarID]struct{}{}
	if c.Label == nil {
		return out
	}
	clauses, err := c.cachedLabelCNF()
	if err != nil {
		return out
	}
	for _, cl := range clauses {
		for l := range cl.LiteralsOriginal {
			out[l.Atom.Var] = struct{}{}
		}
	}
	return out
}

func (c *Constraint) cachedLabelCNF() ([]*cnf.Clause, error) {
	if c.labelCNF != nil || c.Label == nil {
		return c.labelCNF, nil
	}
	clauses, err := cnf.ToCNF([]model.Expr{c.Label})
	if err != nil {
		return nil, err
	}
	c.labelCNF = clauses
	return clauses, nil
}
