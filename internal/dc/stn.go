package dc

import "github.com/tpnx/bcdr/internal/tpn"

// edge is a directed arc in the distance graph: weight bounds `to - from`
// from above (`to - from <= weight`).
type edge struct {
	from, to   string
	weight     float64
	constraint *tpn.Constraint
	bound      tpn.BoundType
}

// STNChecker is the bundled reference implementation of Checker. It treats
// an (already activated, already relaxation-projected) temporal network as
// a plain Simple Temporal Network and checks consistency via Bellman-Ford
// from a virtual zero event connected to every real event with a
// zero-weight edge (so disconnected components are all reachable from a
// single source).
type STNChecker struct{}

const zeroEvent = "\x00zero"

func (STNChecker) IsControllable(net tpn.Network) (bool, []TemporalConflict) {
	events := map[string]struct{}{}
	var edges []edge
	for _, c := range net.Constraints {
		events[c.Start] = struct{}{}
		events[c.End] = struct{}{}
		// end - start <= ub  =>  forward edge start->end, weight ub.
		edges = append(edges, edge{from: c.Start, to: c.End, weight: c.UB, constraint: c, bound: tpn.UBPlus})
		// start - end <= -lb  =>  backward edge end->start, weight -lb.
		edges = append(edges, edge{from: c.End, to: c.Start, weight: -c.LB, constraint: c, bound: tpn.LBMinus})
	}
	for ev := range events {
		edges = append(edges, edge{from: zeroEvent, to: ev, weight: 0})
	}
	events[zeroEvent] = struct{}{}

	dist := map[string]float64{}
	pred := map[string]*edge{}
	for ev := range events {
		dist[ev] = 1e18
	}
	dist[zeroEvent] = 0

	n := len(events)
	var relaxedLast *edge
	for i := 0; i < n; i++ {
		relaxedLast = nil
		for idx := range edges {
			e := &edges[idx]
			if dist[e.from]+e.weight < dist[e.to]-1e-9 {
				dist[e.to] = dist[e.from] + e.weight
				pred[e.to] = e
				relaxedLast = e
			}
		}
		if relaxedLast == nil {
			break
		}
	}

	if relaxedLast == nil {
		return true, nil
	}

	// A relaxation happened on the n-th (extra) iteration: relaxedLast.to
	// lies on or is reachable from a negative cycle. Walk predecessors n
	// times to guarantee landing on the cycle itself, then walk the cycle
	// once to collect its edges.
	onCycle := relaxedLast.to
	for i := 0; i < n; i++ {
		if p, ok := pred[onCycle]; ok {
			onCycle = p.from
		}
	}

	var ineq Inequality
	seen := map[string]bool{}
	cur := onCycle
	for {
		p, ok := pred[cur]
		if !ok {
			break
		}
		ineq = append(ineq, Term{Constraint: p.constraint, Bound: p.bound})
		cur = p.from
		if seen[cur] {
			break
		}
		seen[cur] = true
		if cur == onCycle {
			break
		}
	}
	if len(ineq) == 0 {
		return true, nil
	}
	return false, []TemporalConflict{{ineq}}
}
