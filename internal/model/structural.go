package model

// StructuralConstraints builds the implicit "exactly one value" constraints
// for every declared variable: one disjunction over all domain values plus
// a pairwise negated-conjunction for every pair.
func StructuralConstraints(store *Store) []Expr {
	var out []Expr
	for _, v := range store.All() {
		disjuncts := make([]Expr, len(v.Domain))
		for i, d := range v.Domain {
			disjuncts[i] = AssignExpr{Var: v.ID, Val: d}
		}
		out = append(out, Disjunction{Operands: disjuncts})

		for i := 0; i < len(v.Domain); i++ {
			for j := i + 1; j < len(v.Domain); j++ {
				out = append(out, Negation{Operand: Conjunction{Operands: []Expr{
					AssignExpr{Var: v.ID, Val: v.Domain[i]},
					AssignExpr{Var: v.ID, Val: v.Domain[j]},
				}}})
			}
		}
	}
	return out
}
