// Package dc defines the Dynamic Controllability checker contract (an
// external collaborator treated as a black box by the search) and
// bundles a reference implementation, STNChecker.
//
// No TPNConstraint in this system carries an uncontrollable/contingent
// duration: constraints are only conditionally active, never contingently
// timed. Dynamic controllability of an already-activated, already
// relaxation-projected network therefore reduces to ordinary Simple
// Temporal Network consistency — no negative cycle in the constraint's
// distance graph — which is what STNChecker implements, via Bellman-Ford.
package dc

import (
	"github.com/tpnx/bcdr/internal/tpn"
)

// Term is one (constraint, boundtype) pair contributing to a temporal
// conflict's linear inequality.
type Term struct {
	Constraint *tpn.Constraint
	Bound      tpn.BoundType
}

// Inequality is a sum of Terms whose bound combination yields a
// contradiction in the STN projection.
type Inequality []Term

// TemporalConflict is a disjunction of alternative Inequalities: repairing
// any single one repairs the conflict.
type TemporalConflict []Inequality

// Checker is the abstract contract implemented by the (external, black
// box) DC algorithm. BCDR only ever calls IsControllable; it never
// inspects a Checker's internals.
type Checker interface {
	IsControllable(net tpn.Network) (bool, []TemporalConflict)
}
