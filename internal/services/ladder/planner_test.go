package ladder

import (
	"testing"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/util"
)

func TestBuildLadderGeometricSteps(t *testing.T) {
	plan := NewPlanner().BuildLadder(models.LadderConfig{
		EntryPrice:     40000,
		StepPct:        10,
		SellPctPerStep: 10,
		MaxSteps:       3,
	})

	want := []models.LadderStep{
		{Step: 1, TargetPrice: 44000.00, GainPct: 10.00, SellPct: 10},
		{Step: 2, TargetPrice: 48400.00, GainPct: 21.00, SellPct: 10},
		{Step: 3, TargetPrice: 53240.00, GainPct: 33.10, SellPct: 10},
	}
	if len(plan.Steps) != len(want) {
		t.Fatalf("len(steps) = %d, want %d", len(plan.Steps), len(want))
	}
	for i, step := range plan.Steps {
		if step != want[i] {
			t.Errorf("step %d = %+v, want %+v", i+1, step, want[i])
		}
	}
	if plan.CumulativeSellPct != 30 {
		t.Errorf("cumulative sell = %v, want 30", plan.CumulativeSellPct)
	}
	if plan.Oversubscribed {
		t.Error("30%% cumulative sell should not flag oversubscription")
	}
}

func TestBuildLadderRejectsNonPositiveEntry(t *testing.T) {
	planner := NewPlanner()
	for _, entry := range []float64{0, -100} {
		plan := planner.BuildLadder(models.LadderConfig{
			EntryPrice:     entry,
			StepPct:        10,
			SellPctPerStep: 10,
			MaxSteps:       3,
		})
		if len(plan.Steps) != 0 {
			t.Errorf("entry %v: got %d steps, want empty plan", entry, len(plan.Steps))
		}
	}
}

// max_steps * sell_pct_per_step above 100 is accepted input, surfaced via
// the oversubscription flag instead of an error.
func TestBuildLadderOversubscription(t *testing.T) {
	plan := NewPlanner().BuildLadder(models.LadderConfig{
		EntryPrice:     2000,
		StepPct:        10,
		SellPctPerStep: 15,
		MaxSteps:       8,
	})
	if plan.CumulativeSellPct != 120 {
		t.Fatalf("cumulative sell = %v, want 120", plan.CumulativeSellPct)
	}
	if !plan.Oversubscribed {
		t.Fatal("120%% cumulative sell should flag oversubscription")
	}
	for _, step := range plan.Steps {
		if step.SellPct != 15 {
			t.Fatalf("step %d sell = %v, want constant 15", step.Step, step.SellPct)
		}
	}
}

func TestTrailingStop(t *testing.T) {
	planner := NewPlanner()

	stop := planner.TrailingStop(50000, util.FloatPtr(20))
	if stop == nil {
		t.Fatal("expected a stop price")
	}
	if *stop != 40000.00 {
		t.Fatalf("stop = %v, want 40000.00", *stop)
	}
}

func TestTrailingStopAbsentInputs(t *testing.T) {
	planner := NewPlanner()

	if stop := planner.TrailingStop(50000, nil); stop != nil {
		t.Fatalf("nil pct: stop = %v, want nil", *stop)
	}
	if stop := planner.TrailingStop(0, util.FloatPtr(20)); stop != nil {
		t.Fatalf("zero price: stop = %v, want nil", *stop)
	}
}
