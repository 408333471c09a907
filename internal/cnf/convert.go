package cnf

import (
	"github.com/tpnx/bcdr/internal/bcdrerr"
	"github.com/tpnx/bcdr/internal/model"
)

// ToCNF converts a batch of typed expressions into a slice of Clauses,
// indexed consecutively within the batch. It eliminates =>, <=>, and ^ via
// their standard identities, pushes negations inward (De Morgan plus
// double-negation elimination), distributes disjunction over conjunction,
// and simplifies each resulting clause (dropping tautologies via
// NewClause, de-duplicating literals via the underlying set).
func ToCNF(exprs []model.Expr) ([]*Clause, error) {
	var all [][]Literal
	for _, e := range exprs {
		compiled, err := compileAwayOperators(e)
		if err != nil {
			return nil, err
		}
		all = append(all, cnfRecursive(compiled)...)
	}
	clauses := make([]*Clause, 0, len(all))
	idx := 0
	for _, lits := range all {
		c, ok := NewClause(lits, idx)
		if !ok {
			continue // tautology, drop
		}
		idx++
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// compileAwayOperators rewrites Implication/Equivalence/Xor in terms of
// Negation/Conjunction/Disjunction, recursively, matching
// cda_star/clauses.py's compile_away_operators.
func compileAwayOperators(e model.Expr) (model.Expr, error) {
	switch v := e.(type) {
	case model.AssignExpr:
		return v, nil
	case model.Negation:
		inner, err := compileAwayOperators(v.Operand)
		if err != nil {
			return nil, err
		}
		return model.Negation{Operand: inner}, nil
	case model.Conjunction:
		ops, err := compileAwayAll(v.Operands)
		if err != nil {
			return nil, err
		}
		return model.Conjunction{Operands: ops}, nil
	case model.Disjunction:
		ops, err := compileAwayAll(v.Operands)
		if err != nil {
			return nil, err
		}
		return model.Disjunction{Operands: ops}, nil
	case model.XorExpr:
		return compileAwayOperators(convertXor(v))
	case model.Implication:
		return compileAwayOperators(convertImplication(v))
	case model.Equivalence:
		return compileAwayOperators(convertEquivalence(v))
	default:
		return nil, bcdrerr.Typecheckf("cnf: unexpected expression node %T", e)
	}
}

func compileAwayAll(exprs []model.Expr) ([]model.Expr, error) {
	out := make([]model.Expr, len(exprs))
	for i, e := range exprs {
		c, err := compileAwayOperators(e)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// convertImplication: A => B  ==  ~A | B
func convertImplication(imp model.Implication) model.Expr {
	return model.Disjunction{Operands: []model.Expr{
		model.Negation{Operand: imp.Antecedent},
		imp.Consequent,
	}}
}

// convertEquivalence: A <=> B  ==  (A & B) | (~A & ~B)
func convertEquivalence(eq model.Equivalence) model.Expr {
	return model.Disjunction{Operands: []model.Expr{
		model.Conjunction{Operands: []model.Expr{eq.Antecedent, eq.Consequent}},
		model.Conjunction{Operands: []model.Expr{
			model.Negation{Operand: eq.Antecedent},
			model.Negation{Operand: eq.Consequent},
		}},
	}}
}

// convertXor expands an n-ary XOR by building, for each disjunct x_i, the
// conjunction that negates x_i and keeps every other disjunct positive,
// then OR-ing those conjunctions together. This is the "exactly one is
// different" expansion, not general n-ary parity.
func convertXor(x model.XorExpr) model.Expr {
	var disjuncts []model.Expr
	for i := range x.Operands {
		var conj []model.Expr
		for j, c := range x.Operands {
			if i == j {
				conj = append(conj, model.Negation{Operand: c})
			} else {
				conj = append(conj, c)
			}
		}
		disjuncts = append(disjuncts, model.Conjunction{Operands: conj})
	}
	return model.Disjunction{Operands: disjuncts}
}

// cnfRecursive pushes negations inward and distributes disjunction over
// conjunction, returning a list of clauses, each a list of Literals (an OR
// of literals), matching cda_star/clauses.py's cnf_recursive_helper.
func cnfRecursive(e model.Expr) [][]Literal {
	switch v := e.(type) {
	case model.AssignExpr:
		return [][]Literal{{{Atom: model.Assignment{Var: v.Var, Val: v.Val}, Positive: true}}}

	case model.Negation:
		switch obj := v.Operand.(type) {
		case model.AssignExpr:
			return [][]Literal{{{Atom: model.Assignment{Var: obj.Var, Val: obj.Val}, Positive: false}}}
		case model.Negation:
			return cnfRecursive(obj.Operand)
		case model.Conjunction:
			negated := make([]model.Expr, len(obj.Operands))
			for i, c := range obj.Operands {
				negated[i] = model.Negation{Operand: c}
			}
			return cnfRecursive(model.Disjunction{Operands: negated})
		case model.Disjunction:
			negated := make([]model.Expr, len(obj.Operands))
			for i, d := range obj.Operands {
				negated[i] = model.Negation{Operand: d}
			}
			return cnfRecursive(model.Conjunction{Operands: negated})
		default:
			panic("cnf: unreachable negation operand after compileAwayOperators")
		}

	case model.Conjunction:
		var clauses [][]Literal
		for _, c := range v.Operands {
			clauses = append(clauses, cnfRecursive(c)...)
		}
		return clauses

	case model.Disjunction:
		perOperand := make([][][]Literal, len(v.Operands))
		for i, d := range v.Operands {
			perOperand[i] = cnfRecursive(d)
		}
		clauses := cartesianUnion(perOperand)
		return simplifyClauses(clauses)

	default:
		panic("cnf: unreachable expression node after compileAwayOperators")
	}
}

// cartesianUnion computes the cross product of per-operand clause lists,
// concatenating (OR-ing) one clause choice from each operand into a single
// flat clause per combination — the standard distribute-OR-over-AND step.
func cartesianUnion(perOperand [][][]Literal) [][]Literal {
	result := [][]Literal{{}}
	for _, choices := range perOperand {
		var next [][]Literal
		for _, partial := range result {
			for _, choice := range choices {
				combined := make([]Literal, 0, len(partial)+len(choice))
				combined = append(combined, partial...)
				combined = append(combined, choice...)
				next = append(next, combined)
			}
		}
		result = next
	}
	return result
}

// simplifyClauses drops clauses containing both a literal and its
// complement and de-duplicates literals within each remaining clause.
func simplifyClauses(clauses [][]Literal) [][]Literal {
	var out [][]Literal
	for _, lits := range clauses {
		seen := map[Literal]struct{}{}
		tautology := false
		for _, l := range lits {
			if _, ok := seen[l.Complement()]; ok {
				tautology = true
				break
			}
			seen[l] = struct{}{}
		}
		if tautology {
			continue
		}
		dedup := make([]Literal, 0, len(seen))
		for l := range seen {
			dedup = append(dedup, l)
		}
		out = append(out, dedup)
	}
	return out
}
