package search

import (
	"sort"
	"testing"

	"github.com/tpnx/bcdr/internal/dc"
	"github.com/tpnx/bcdr/internal/model"
	"github.com/tpnx/bcdr/internal/relax"
	"github.com/tpnx/bcdr/internal/sat"
	"github.com/tpnx/bcdr/internal/tpn"
)

// alwaysControllable is a stub dc.Checker used by tests that don't exercise
// the temporal side of the search.
type alwaysControllable struct{}

func (alwaysControllable) IsControllable(tpn.Network) (bool, []dc.TemporalConflict) {
	return true, nil
}

func newTestSearcher(t *testing.T) (*Searcher, *model.Store, model.VarID, model.VarID) {
	t.Helper()
	store := model.NewStore()
	a, err := store.Add("A", model.FiniteDomain, []string{"1", "2", "3"}, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Add("B", model.FiniteDomain, []string{"1", "2", "3"}, true)
	if err != nil {
		t.Fatal(err)
	}

	satChecker := sat.NewChecker(nil, map[model.Assignment]struct{}{}, store)
	engine := relax.NewEngine(relax.NewGonumSolver(relax.DefaultOptions), relax.DefaultOptions)
	searcher := NewSearcher(store, nil, map[model.Assignment]float64{}, satChecker, alwaysControllable{}, engine, DefaultOptions)
	return searcher, store, a.ID, b.ID
}

func TestSplitOnConflictConstituentKernels(t *testing.T) {
	searcher, _, aID, bID := newTestSearcher(t)

	node := &Node{
		Assignment: map[model.VarID]model.Assignment{
			aID: assignment(aID, "1"),
			bID: assignment(bID, "1"),
		},
		ResolvedConflicts: map[string]bool{},
	}
	conflict := Conflict{
		assignment(aID, "1"): {},
		assignment(bID, "1"): {},
	}

	children := searcher.splitOnConflict(node, conflict)
	if len(children) != 4 {
		t.Fatalf("expected 4 constituent-kernel children, got %d", len(children))
	}

	var got []string
	for _, c := range children {
		if va, ok := c.Assignment[aID]; ok && va.Val != "1" {
			got = append(got, "A="+va.Val)
		}
		if vb, ok := c.Assignment[bID]; ok && vb.Val != "1" {
			got = append(got, "B="+vb.Val)
		}
	}
	sort.Strings(got)
	want := []string{"A=2", "A=3", "B=2", "B=3"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("got kernels %v, want %v", got, want)
		}
	}

	// Every child still assigns both conflicting variables.
	for _, c := range children {
		if _, hasA := c.Assignment[aID]; !hasA {
			t.Fatal("child missing A assignment entirely")
		}
		if _, hasB := c.Assignment[bID]; !hasB {
			t.Fatal("child missing B assignment entirely")
		}
	}
}

func TestSplitOnVariableEmitsOneChildPerDomainValue(t *testing.T) {
	searcher, _, aID, _ := newTestSearcher(t)
	node := &Node{
		Assignment:        map[model.VarID]model.Assignment{},
		ResolvedConflicts: map[string]bool{},
	}
	children := searcher.splitOnVariable(node, aID)
	if len(children) != 3 {
		t.Fatalf("expected 3 children (one per domain value), got %d", len(children))
	}
	seen := map[string]bool{}
	for _, c := range children {
		seen[c.Assignment[aID].Val] = true
	}
	for _, want := range []string{"1", "2", "3"} {
		if !seen[want] {
			t.Errorf("missing child with A=%s", want)
		}
	}
}
