package profile

import (
	"testing"

	"fitguru-bot/internal/bodymetrics"
)

func completeDraft() *Draft {
	d := &Draft{}
	d.SetGender(bodymetrics.Male)
	d.SetAge(30)
	d.SetHeight(180)
	d.SetWeight(80)
	d.SetActivity(bodymetrics.ActivityModerate)
	d.SetGoal(bodymetrics.GoalMaintain)
	return d
}

func TestFinalize(t *testing.T) {
	p, err := completeDraft().Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if !p.Complete {
		t.Error("expected profile to be marked complete")
	}
	if p.BMRKcal != 1780 {
		t.Errorf("expected BMR 1780, got %d", p.BMRKcal)
	}
	if p.TDEEKcal != 2759 {
		t.Errorf("expected TDEE 2759, got %d", p.TDEEKcal)
	}
	if p.TargetKcal != 2759 {
		t.Errorf("expected target 2759, got %d", p.TargetKcal)
	}
	if p.BMI != 24.7 {
		t.Errorf("expected BMI 24.7, got %v", p.BMI)
	}
}

func TestFinalizeMissingField(t *testing.T) {
	d := completeDraft()
	d.Goal = nil

	if _, err := d.Finalize(); err != ErrIncomplete {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestDraftRejectsOutOfRange(t *testing.T) {
	d := &Draft{}

	if d.SetAge(9) || d.SetAge(101) {
		t.Error("expected out-of-range age to be rejected")
	}
	if d.SetHeight(99) || d.SetHeight(251) {
		t.Error("expected out-of-range height to be rejected")
	}
	if d.SetWeight(29.9) || d.SetWeight(300.1) {
		t.Error("expected out-of-range weight to be rejected")
	}
	if d.SetGender("other") {
		t.Error("expected unknown gender to be rejected")
	}
	if d.SetActivity("sofa") {
		t.Error("expected unknown activity to be rejected")
	}
	if d.SetGoal("recomp") {
		t.Error("expected unknown goal to be rejected")
	}
	if d.Age != nil || d.HeightCM != nil || d.WeightKG != nil {
		t.Error("rejected answers must not be recorded")
	}
}

func TestUpdateWeightIdempotent(t *testing.T) {
	p, err := completeDraft().Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if err := p.UpdateWeight(75); err != nil {
		t.Fatalf("UpdateWeight failed: %v", err)
	}
	first := *p
	if err := p.UpdateWeight(75); err != nil {
		t.Fatalf("second UpdateWeight failed: %v", err)
	}
	if *p != first {
		t.Errorf("expected identical metrics after repeated update: %+v vs %+v", first, *p)
	}

	// All four derived metrics must reflect the new weight.
	wantBMR, _ := bodymetrics.BMR(75, 180, 30, bodymetrics.Male)
	if p.BMRKcal != wantBMR {
		t.Errorf("expected BMR %d after update, got %d", wantBMR, p.BMRKcal)
	}
}

func TestUpdateWeightRejectedLeavesProfileUntouched(t *testing.T) {
	p, err := completeDraft().Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	before := *p

	if err := p.UpdateWeight(500); err == nil {
		t.Fatal("expected out-of-range weight to be rejected")
	}
	if *p != before {
		t.Errorf("rejected update must not mutate the profile: %+v vs %+v", before, *p)
	}
}
