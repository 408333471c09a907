package search

import "github.com/rhartert/yagh"

// Frontier is the best-first max-heap of pending search nodes: a
// yagh.IntMap keyed on the negated priority (yagh is a min-heap; negating
// recovers max-heap order and its own insertion-order tie-break comes for
// free), with node payloads addressed by arena index in a side slice
// owned by the Searcher.
type Frontier struct {
	order *yagh.IntMap[float64]
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{order: yagh.New[float64](0)}
}

// Push registers node id with the given priority.
func (f *Frontier) Push(id NodeID, priority float64) {
	f.order.GrowBy(1)
	f.order.Put(int(id), -priority)
}

// Pop removes and returns the highest-priority node id. ok is false when
// the frontier is empty.
func (f *Frontier) Pop() (NodeID, bool) {
	next, ok := f.order.Pop()
	if !ok {
		return 0, false
	}
	return NodeID(next.Elem), true
}
