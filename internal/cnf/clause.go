// Package cnf converts typed propositional expressions into conjunctive
// normal form and represents the resulting clauses with literal-level
// provenance, as required by the SAT checker's conflict-extraction walk
// (C2 in the design).
package cnf

import (
	"fmt"

	"github.com/tpnx/bcdr/internal/model"
)

// Literal is an (atom, polarity) pair. Atoms are Assignments; two literals
// are complements iff they share an atom and differ in polarity. Literal is
// a plain comparable struct, usable directly as a map key, keeping the
// Assignment itself as the atom instead of a packed-int/raw
// variable-polarity pair.
type Literal struct {
	Atom     model.Assignment
	Positive bool
}

func (l Literal) Complement() Literal {
	return Literal{Atom: l.Atom, Positive: !l.Positive}
}

func (l Literal) IsComplementOf(other Literal) bool {
	return l.Atom == other.Atom && l.Positive != other.Positive
}

func (l Literal) String() string {
	if l.Positive {
		return fmt.Sprintf("(%d=%s)", l.Atom.Var, l.Atom.Val)
	}
	return fmt.Sprintf("~(%d=%s)", l.Atom.Var, l.Atom.Val)
}

// Clause is a disjunction of literals. Literals holds the live working set
// (shrinks as literals are falsified during unit propagation);
// LiteralsOriginal is an immutable snapshot taken at construction time and
// is never mutated — the conflict-extraction walk in internal/sat needs
// both: the live set to detect emptiness, the original set to retrace
// which literals originally justified the clause becoming unit.
type Clause struct {
	Index            int
	Literals         map[Literal]struct{}
	LiteralsOriginal map[Literal]struct{}
}

// NewClause builds a Clause from a literal slice, de-duplicating and
// dropping the clause entirely (nil, false) if it contains a literal and
// its complement (a tautology).
func NewClause(lits []Literal, index int) (*Clause, bool) {
	set := make(map[Literal]struct{}, len(lits))
	for _, l := range lits {
		if _, ok := set[l.Complement()]; ok {
			return nil, false // tautological clause, drop it
		}
		set[l] = struct{}{}
	}
	orig := make(map[Literal]struct{}, len(set))
	for l := range set {
		orig[l] = struct{}{}
	}
	return &Clause{Index: index, Literals: set, LiteralsOriginal: orig}, true
}

func (c *Clause) Len() int { return len(c.Literals) }

// Copy returns a shallow clause copy whose Literals map can be mutated
// independently; LiteralsOriginal is shared (it is never mutated).
func (c *Clause) Copy() *Clause {
	lits := make(map[Literal]struct{}, len(c.Literals))
	for l := range c.Literals {
		lits[l] = struct{}{}
	}
	return &Clause{Index: c.Index, Literals: lits, LiteralsOriginal: c.LiteralsOriginal}
}

// IsSatisfiedBy reports whether any of the given assigned (true) literals
// appears in this clause.
func (c *Clause) IsSatisfiedBy(assigned map[Literal]struct{}) bool {
	for l := range assigned {
		if _, ok := c.Literals[l]; ok {
			return true
		}
	}
	return false
}

// RemoveFalseLiteral drops the complement of the given (true) literal from
// the clause's live working set. LiteralsOriginal is left untouched.
func (c *Clause) RemoveFalseLiteral(trueLit Literal) {
	delete(c.Literals, trueLit.Complement())
}

// OnlyLiteral returns the single remaining literal of a unit clause. Callers
// must only call this when Len() == 1.
func (c *Clause) OnlyLiteral() Literal {
	for l := range c.Literals {
		return l
	}
	panic("cnf: OnlyLiteral called on a non-unit clause")
}

func (c *Clause) String() string {
	return fmt.Sprintf("Clause#%d%v", c.Index, keys(c.Literals))
}

func keys(m map[Literal]struct{}) []Literal {
	out := make([]Literal, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	return out
}
