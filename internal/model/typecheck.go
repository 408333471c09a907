package model

import "github.com/tpnx/bcdr/internal/bcdrerr"

// Typecheck resolves an untyped Expr (as returned by ParseExpression) into
// a fully-typed tree: bare Terms become AssignExpr{Var, "True"} if (and
// only if) they name a known binary variable; `ident=ident` forms become
// AssignExpr after validating the variable exists and the value is in its
// domain.
func Typecheck(e Expr, store *Store) (Expr, error) {
	switch v := e.(type) {
	case Term:
		va, ok := store.ByName(v.Name)
		if !ok {
			return nil, bcdrerr.Declarationf("unknown variable %q", v.Name)
		}
		if va.Kind != Binary {
			return nil, bcdrerr.Typecheckf("variable %q is finite_domain, not binary; use %s=<value>", va.Name, va.Name)
		}
		return AssignExpr{Var: va.ID, Val: "True"}, nil

	case rawAssign:
		va, ok := store.ByName(v.varName)
		if !ok {
			return nil, bcdrerr.Declarationf("unknown variable %q", v.varName)
		}
		if !va.HasValue(v.val) {
			return nil, bcdrerr.Declarationf("value %q is not in the domain of variable %q", v.val, va.Name)
		}
		return AssignExpr{Var: va.ID, Val: v.val}, nil

	case Negation:
		inner, err := Typecheck(v.Operand, store)
		if err != nil {
			return nil, err
		}
		return Negation{Operand: inner}, nil

	case Conjunction:
		ops, err := typecheckAll(v.Operands, store)
		if err != nil {
			return nil, err
		}
		return Conjunction{Operands: ops}, nil

	case Disjunction:
		ops, err := typecheckAll(v.Operands, store)
		if err != nil {
			return nil, err
		}
		return Disjunction{Operands: ops}, nil

	case XorExpr:
		ops, err := typecheckAll(v.Operands, store)
		if err != nil {
			return nil, err
		}
		return XorExpr{Operands: ops}, nil

	case Implication:
		a, err := Typecheck(v.Antecedent, store)
		if err != nil {
			return nil, err
		}
		c, err := Typecheck(v.Consequent, store)
		if err != nil {
			return nil, err
		}
		return Implication{Antecedent: a, Consequent: c}, nil

	case Equivalence:
		a, err := Typecheck(v.Antecedent, store)
		if err != nil {
			return nil, err
		}
		c, err := Typecheck(v.Consequent, store)
		if err != nil {
			return nil, err
		}
		return Equivalence{Antecedent: a, Consequent: c}, nil

	case AssignExpr, VarRef:
		return v, nil

	default:
		return nil, bcdrerr.Typecheckf("unknown expression node %T", e)
	}
}

func typecheckAll(exprs []Expr, store *Store) ([]Expr, error) {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		te, err := Typecheck(e, store)
		if err != nil {
			return nil, err
		}
		out[i] = te
	}
	return out, nil
}
