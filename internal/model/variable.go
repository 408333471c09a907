// Package model implements the propositional data model (C1): finite-domain
// decision variables, assignments, and the expression grammar used for
// propositional and temporal-label constraints.
package model

import "github.com/tpnx/bcdr/internal/bcdrerr"

// Kind discriminates binary variables (implicit {True, False} domain) from
// general finite-domain variables.
type Kind int

const (
	Binary Kind = iota
	FiniteDomain
)

// VarID is a stable, arena-style index into a Problem's variable store.
// Assignments, Literals, and Clauses key off VarID rather than a *Variable
// pointer so they stay comparable, hashable Go values.
type VarID int

// Variable is a finite-domain (or binary) decision/auxiliary variable.
// Variables outlive every Assignment built from them; a Problem keeps the
// canonical Variable in its own store indexed by ID. Add, ByName, and ByID
// return pointers to that canonical Variable; All returns copies.
type Variable struct {
	ID          VarID
	Name        string
	Kind        Kind
	Domain      []string
	IsDecision  bool
}

// HasValue reports whether v is in the variable's domain.
func (va *Variable) HasValue(v string) bool {
	for _, d := range va.Domain {
		if d == v {
			return true
		}
	}
	return false
}

// Assignment pairs a variable with one of its domain values. It is a plain
// comparable struct so it can be used directly as a map key or inserted
// into a Go set represented as map[Assignment]struct{}.
type Assignment struct {
	Var VarID
	Val string
}

// Store owns the arena of Variables declared on a Problem. Variables are
// heap-allocated individually so a *Variable handed out by Add or ByID
// stays valid across later Add calls that grow the arena.
type Store struct {
	vars   []*Variable
	byName map[string]VarID
}

func NewStore() *Store {
	return &Store{byName: map[string]VarID{}}
}

// Add declares a new variable. Binary variables get an implicit
// {"True","False"} domain; finite-domain variables require a non-empty
// caller-supplied domain.
func (s *Store) Add(name string, kind Kind, domain []string, isDecision bool) (*Variable, error) {
	if _, ok := s.byName[name]; ok {
		return nil, bcdrerr.Declarationf("duplicate variable name %q", name)
	}
	switch kind {
	case Binary:
		if domain != nil {
			return nil, bcdrerr.Declarationf("binary variable %q must not specify a domain", name)
		}
		domain = []string{"True", "False"}
	case FiniteDomain:
		if len(domain) == 0 {
			return nil, bcdrerr.Declarationf("finite-domain variable %q needs a non-empty domain", name)
		}
	default:
		return nil, bcdrerr.Declarationf("unknown variable kind for %q", name)
	}

	id := VarID(len(s.vars))
	v := &Variable{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Domain:     append([]string(nil), domain...),
		IsDecision: isDecision,
	}
	s.vars = append(s.vars, v)
	s.byName[name] = id
	return v, nil
}

func (s *Store) ByName(name string) (*Variable, bool) {
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.vars[id], true
}

func (s *Store) ByID(id VarID) *Variable {
	return s.vars[id]
}

func (s *Store) All() []Variable {
	out := make([]Variable, len(s.vars))
	for i, v := range s.vars {
		out[i] = *v
	}
	return out
}

// DecisionVariables returns the IDs of every variable declared as a
// decision variable.
func (s *Store) DecisionVariables() []VarID {
	var out []VarID
	for _, v := range s.vars {
		if v.IsDecision {
			out = append(out, v.ID)
		}
	}
	return out
}

// GetAssignment validates that val is in the variable's domain and returns
// the corresponding Assignment.
func (s *Store) GetAssignment(id VarID, val string) (Assignment, error) {
	v := s.ByID(id)
	if !v.HasValue(val) {
		return Assignment{}, bcdrerr.Declarationf("value %q is not in the domain of variable %q", val, v.Name)
	}
	return Assignment{Var: id, Val: val}, nil
}
