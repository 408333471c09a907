package tpn

import (
	"testing"

	"github.com/tpnx/bcdr/internal/model"
)

func TestIsActivatedUnconditional(t *testing.T) {
	c := &Constraint{ID: 0, Start: "a", End: "b", LB: 1, UB: 2}
	ok, err := c.IsActivated(map[model.Assignment]struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("unconditional constraint should always be activated")
	}
}

func TestIsActivatedByLabel(t *testing.T) {
	store := model.NewStore()
	v, err := store.Add("x", model.Binary, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	expr, err := model.ParseExpression("x")
	if err != nil {
		t.Fatal(err)
	}
	typed, err := model.Typecheck(expr, store)
	if err != nil {
		t.Fatal(err)
	}
	c := &Constraint{ID: 0, Start: "a", End: "b", LB: 0, UB: 1, Label: typed}

	trueAssignment, err := store.GetAssignment(v.ID, "True")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := c.IsActivated(map[model.Assignment]struct{}{trueAssignment: {}})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected constraint to be activated when x=True")
	}

	falseAssignment, err := store.GetAssignment(v.ID, "False")
	if err != nil {
		t.Fatal(err)
	}
	ok, err = c.IsActivated(map[model.Assignment]struct{}{falseAssignment: {}})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected constraint to be inactive when x=False")
	}
}

func TestActiveConstraintsFilters(t *testing.T) {
	store := model.NewStore()
	v, err := store.Add("x", model.Binary, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	expr, _ := model.ParseExpression("x")
	typed, err := model.Typecheck(expr, store)
	if err != nil {
		t.Fatal(err)
	}
	labelled := &Constraint{ID: 0, Start: "a", End: "b", LB: 0, UB: 1, Label: typed}
	unconditional := &Constraint{ID: 1, Start: "b", End: "c", LB: 0, UB: 1}

	falseAssignment, err := store.GetAssignment(v.ID, "False")
	if err != nil {
		t.Fatal(err)
	}
	active, err := ActiveConstraints([]*Constraint{labelled, unconditional}, map[model.Assignment]struct{}{falseAssignment: {}})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != 1 {
		t.Fatalf("expected only the unconditional constraint active, got %+v", active)
	}
}
