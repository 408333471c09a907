package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tpnx/bcdr/internal/model"
)

func assignment(v model.VarID, val string) model.Assignment {
	return model.Assignment{Var: v, Val: val}
}

func TestKnownConflictsAntiChainInvariant(t *testing.T) {
	var k KnownConflicts

	c1 := Conflict{assignment(0, "1"): {}, assignment(1, "1"): {}}
	if !k.Handle(c1) {
		t.Fatal("expected c1 to be added")
	}

	// A superset of an existing conflict is redundant and must be dropped.
	superset := Conflict{assignment(0, "1"): {}, assignment(1, "1"): {}, assignment(2, "1"): {}}
	if k.Handle(superset) {
		t.Fatal("superset of a known conflict should be dropped, not added")
	}
	if len(k.set) != 1 {
		t.Fatalf("expected anti-chain to still have 1 element, got %d", len(k.set))
	}

	// A subset of an existing conflict subsumes (evicts) it.
	subset := Conflict{assignment(0, "1"): {}}
	if !k.Handle(subset) {
		t.Fatal("expected subset to be added, evicting the superset")
	}
	if len(k.set) != 1 {
		t.Fatalf("expected anti-chain to have 1 element after eviction, got %d", len(k.set))
	}
	if _, ok := k.set[0][assignment(0, "1")]; !ok {
		t.Fatal("expected the surviving conflict to be the subset")
	}
	want := Conflict{assignment(0, "1"): {}}
	if diff := cmp.Diff(want, k.set[0]); diff != "" {
		t.Errorf("surviving conflict mismatch (-want +got):\n%s", diff)
	}
}

func TestKnownConflictsManifest(t *testing.T) {
	var k KnownConflicts
	k.Handle(Conflict{assignment(0, "a"): {}, assignment(1, "b"): {}})

	n := &Node{
		Assignment: map[model.VarID]model.Assignment{
			0: assignment(0, "a"),
			1: assignment(1, "b"),
			2: assignment(2, "z"),
		},
		ResolvedConflicts: map[string]bool{},
	}
	c, ok := k.Manifest(n)
	if !ok {
		t.Fatal("expected conflict to be manifest")
	}

	n.ResolvedConflicts[c.key()] = true
	if _, ok := k.Manifest(n); ok {
		t.Fatal("expected conflict to be excluded once marked resolved on the node")
	}
}
