package bcdr

import (
	"math"
	"testing"

	"github.com/tpnx/bcdr/internal/model"
	"github.com/tpnx/bcdr/internal/search"
	"github.com/tpnx/bcdr/internal/tpn"
)

// S1 — pure Boolean: x,y binary; constraint x => y; no temporal
// constraints. Rewards x=True:1, y=True:0. Expected: solvable, x=True,
// y=True, reward=1, no relaxation.
func TestPureBooleanImplication(t *testing.T) {
	p := New()
	if _, err := p.AddVariable("x", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddVariable("y", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := p.AddConstraint("x => y"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("x", "True", 1); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("y", "True", 0); err != nil {
		t.Fatal(err)
	}

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Solvable {
		t.Fatal("expected a solvable problem")
	}
	if result.Reward != 1 {
		t.Errorf("reward = %v, want 1", result.Reward)
	}
	if result.Relaxation != nil {
		t.Errorf("expected no relaxation, got %+v", result.Relaxation)
	}

	xVar, _ := p.store.ByName("x")
	yVar, _ := p.store.ByName("y")
	if got := result.Assignment[xVar.ID].Val; got != "True" {
		t.Errorf("x = %s, want True", got)
	}
	if got := result.Assignment[yVar.ID].Val; got != "True" {
		t.Errorf("y = %s, want True", got)
	}
}

// Reward-maximization: when both x=True,y=True and x=False,y=* satisfy
// x=>y, the higher-reward branch must be the one accepted.
func TestRewardMaximizationPrefersHigherScoringBranch(t *testing.T) {
	p := New()
	if _, err := p.AddVariable("x", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("x", "True", 5); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("x", "False", 1); err != nil {
		t.Fatal(err)
	}

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Solvable || result.Reward != 5 {
		t.Fatalf("expected solvable with reward 5, got solvable=%v reward=%v", result.Solvable, result.Reward)
	}
}

func TestUnsatisfiableBooleanConstraint(t *testing.T) {
	p := New()
	if _, err := p.AddVariable("x", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := p.AddConstraint("x & ~x"); err != nil {
		t.Fatal(err)
	}

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Solvable {
		t.Fatal("expected unsatisfiable problem to report Solvable=false")
	}
}

// newPathChoiceProblem builds a problem with a path_choice decision
// variable gating two parallel temporal legs (one reward-bearing, one
// not) against a shared outer bound. Varying outerUB/outerRelaxable
// reproduces the uncontrollable / infeasible / relaxation-repaired
// variants of the same network.
func newPathChoiceProblem(t *testing.T, outerUB float64, outerRelaxable bool) *Problem {
	t.Helper()
	p := New()
	if _, err := p.AddVariable("path_choice", model.FiniteDomain, []string{"one", "two"}, true); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("path_choice", "one", 10); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("path_choice", "two", 0); err != nil {
		t.Fatal(err)
	}

	if err := p.AddTemporalConstraint(TemporalConstraintSpec{
		Start: "e1", End: "e2", Name: "outer",
		LB: 0, UB: outerUB,
		UBRelaxable: outerRelaxable, UBLinCost: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddTemporalConstraint(TemporalConstraintSpec{
		Start: "e1", End: "e2", Name: "leg_one", Label: "path_choice=one",
		LB: 405, UB: 486,
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddTemporalConstraint(TemporalConstraintSpec{
		Start: "e1", End: "e2", Name: "leg_two", Label: "path_choice=two",
		LB: 405, UB: 486,
	}); err != nil {
		t.Fatal(err)
	}
	return p
}

// S2 — temporal uncontrollable, repaired by assignment choice: both
// path_choice branches stay within the outer bound, so the higher-reward
// branch (path_choice=one) is accepted outright, no relaxation needed.
func TestTemporalRepairedByAssignmentChoice(t *testing.T) {
	p := newPathChoiceProblem(t, 540, false)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Solvable {
		t.Fatal("expected a solvable problem")
	}
	if result.Reward != 10 {
		t.Errorf("reward = %v, want 10", result.Reward)
	}
	if result.Relaxation != nil {
		t.Errorf("expected no relaxation, got %+v", result.Relaxation)
	}

	pc, _ := p.store.ByName("path_choice")
	if got := result.Assignment[pc.ID].Val; got != "one" {
		t.Errorf("path_choice = %s, want one", got)
	}
}

// S3 — temporal infeasible, no relaxable bounds: shrinking the outer
// bound below the leg's lower bound makes every path_choice branch
// temporally uncontrollable, and nothing is relaxable to repair it.
func TestTemporalInfeasibleWithoutRelaxableBounds(t *testing.T) {
	p := newPathChoiceProblem(t, 400, false)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Solvable {
		t.Fatal("expected an unsolvable problem")
	}
	if len(result.Residual) == 0 {
		t.Fatal("expected residual conflicts to be recorded")
	}

	var mentionsOuter bool
	for _, conflicts := range result.Residual {
		for _, conflict := range conflicts {
			for _, ineq := range conflict {
				for _, term := range ineq {
					if term.Constraint.Name == "outer" {
						mentionsOuter = true
					}
				}
			}
		}
	}
	if !mentionsOuter {
		t.Fatal("expected a residual conflict referencing the outer bound")
	}
}

// S4 — temporal infeasible, repaired by relaxing the outer bound: same
// network as S3, but the outer bound can be stretched at a cost of 1 per
// unit, which buys back exactly the 5-unit shortfall against the leg's
// lower bound.
func TestTemporalInfeasibleRepairedByRelaxation(t *testing.T) {
	p := newPathChoiceProblem(t, 400, true)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Solvable {
		t.Fatal("expected a solvable problem")
	}

	pc, _ := p.store.ByName("path_choice")
	if got := result.Assignment[pc.ID].Val; got != "one" {
		t.Errorf("path_choice = %s, want one", got)
	}

	if result.Relaxation == nil {
		t.Fatal("expected a non-nil relaxation")
	}
	outerID := tpn.ConstraintID(0) // first constraint added in newPathChoiceProblem
	amount := result.Relaxation.Sol[tpn.RelaxKey{Constraint: outerID, Bound: tpn.UBPlus}]
	if math.Abs(amount-5) > 0.01 {
		t.Errorf("relaxed amount = %v, want ~5", amount)
	}
	if math.Abs(result.Relaxation.Objective-5) > 0.01 {
		t.Errorf("objective = %v, want ~5", result.Relaxation.Objective)
	}
	if math.Abs(result.Reward-5) > 0.01 {
		t.Errorf("reward = %v, want 10 - 5 = 5", result.Reward)
	}
}

// S5 — conflict-learning reuse: a,b's implication is violated under
// a=True,b=False regardless of the free variable c, so the same Boolean
// conflict is triggered by two distinct complete assignments
// (a=True,b=False,c=True and a=True,b=False,c=False). The known-conflict
// anti-chain must let the search resolve the second occurrence without
// re-deriving it, keeping the whole run within a small bound on
// expansions and still reaching the reward-maximizing assignment.
func TestConflictLearningReuseBoundsExpansions(t *testing.T) {
	p := New()
	if _, err := p.AddVariable("a", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddVariable("b", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddVariable("c", model.Binary, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := p.AddConstraint("a => b"); err != nil {
		t.Fatal(err)
	}
	// Weighting a=True and b=False each above their opposite makes the
	// (doomed) a=True,b=False subtree the highest-priority one, so the
	// best-first frontier visits both its c=True and c=False completions
	// before falling back to a satisfiable branch.
	if err := p.AddReward("a", "True", 1); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReward("b", "False", 1); err != nil {
		t.Fatal(err)
	}

	p.Options(search.Options{MaxExpansions: 64}, p.relaxOpts)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Solvable {
		t.Fatal("expected a solvable problem within the expansion bound")
	}
	if result.Reward != 1 {
		t.Errorf("reward = %v, want 1", result.Reward)
	}

	aVar, _ := p.store.ByName("a")
	bVar, _ := p.store.ByName("b")
	if result.Assignment[aVar.ID].Val == "True" && result.Assignment[bVar.ID].Val == "False" {
		t.Fatal("accepted assignment violates a => b")
	}
}
