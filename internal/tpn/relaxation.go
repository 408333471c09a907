package tpn

// Relaxation maps a (ConstraintID, BoundType) pair — BoundType is always
// LBMinus or UBPlus here, the only two directions a bound can be relaxed
// in — to a non-negative relaxation amount, plus the resulting objective
// value (sum of amount * linear cost).
type Relaxation struct {
	Sol       map[RelaxKey]float64
	Objective float64
}

type RelaxKey struct {
	Constraint ConstraintID
	Bound      BoundType
}

// Merge composes two relaxations by taking the element-wise max of their
// deltas and recomputing the objective from the merged deltas: a bound
// relaxed by both inputs takes the larger of the two amounts rather than
// their sum.
func (r *Relaxation) Merge(other *Relaxation, linCost func(RelaxKey) float64) *Relaxation {
	merged := make(map[RelaxKey]float64, len(r.Sol)+len(other.Sol))
	for k, v := range r.Sol {
		merged[k] = v
	}
	for k, v := range other.Sol {
		if existing, ok := merged[k]; !ok || v > existing {
			merged[k] = v
		}
	}
	var objective float64
	for k, amount := range merged {
		objective += amount * linCost(k)
	}
	return &Relaxation{Sol: merged, Objective: objective}
}

// Project returns a clone of constraints with lb/ub shifted by the
// relaxation's deltas: lb -= Sol[(c, LB-)], ub += Sol[(c, UB+)].
func Project(constraints []*Constraint, r *Relaxation) []*Constraint {
	out := make([]*Constraint, len(constraints))
	for i, c := range constraints {
		clone := *c
		if r != nil {
			if d, ok := r.Sol[RelaxKey{Constraint: c.ID, Bound: LBMinus}]; ok {
				clone.LB -= d
			}
			if d, ok := r.Sol[RelaxKey{Constraint: c.ID, Bound: UBPlus}]; ok {
				clone.UB += d
			}
		}
		out[i] = &clone
	}
	return out
}
