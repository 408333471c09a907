// Package search implements the best-first, conflict-directed search (C7):
// a frontier of partial decision-variable assignments, each expanded by
// either conflict-directed splitting, variable splitting, or a full
// consistency check (propositional SAT plus dynamic controllability),
// with relaxation-based repair of temporally inconsistent branches.
package search

import (
	"github.com/tpnx/bcdr/internal/model"
	"github.com/tpnx/bcdr/internal/tpn"
)

// NodeID is the arena index of a search node, handed out in creation
// order so ties in the frontier break by insertion order.
type NodeID int

// Node is one partial-assignment branch of the search tree. Variables and
// the relaxation it carries are immutable once created; a node transitions
// between states only by producing children, never by mutating itself in
// place (except ResolvedConflicts, which only ever grows).
type Node struct {
	ID         NodeID
	Assignment map[model.VarID]model.Assignment

	// Relaxation is nil until a conflict on this branch has been repaired
	// by relaxing one or more temporal bounds.
	Relaxation *tpn.Relaxation

	// ResolvedConflicts holds the keys (see Conflict.key) of every known
	// conflict this node has already been split on, so a conflict
	// repaired via relaxation (which leaves the assignment unchanged)
	// isn't immediately re-matched forever.
	ResolvedConflicts map[string]bool

	Priority float64
}

func (n *Node) clone() *Node {
	assignment := make(map[model.VarID]model.Assignment, len(n.Assignment))
	for k, v := range n.Assignment {
		assignment[k] = v
	}
	resolved := make(map[string]bool, len(n.ResolvedConflicts))
	for k, v := range n.ResolvedConflicts {
		resolved[k] = v
	}
	return &Node{
		Assignment:        assignment,
		Relaxation:        n.Relaxation,
		ResolvedConflicts: resolved,
	}
}

// priority computes `reward(assignment) - relaxation.objective`.
func priority(n *Node, rewards map[model.Assignment]float64) float64 {
	var r float64
	for _, a := range n.Assignment {
		r += rewards[a]
	}
	if n.Relaxation != nil {
		r -= n.Relaxation.Objective
	}
	return r
}
