// Package profile models a user's fitness profile: the six onboarding
// answers plus the metrics derived from them. A Draft accumulates answers
// during onboarding; Finalize turns it into a complete Profile, computing
// all derived metrics in one step so they can never disagree with the
// source fields.
package profile

import (
	"errors"
	"fmt"

	"fitguru-bot/internal/bodymetrics"
)

// Valid input ranges for the free-text onboarding answers.
const (
	MinAge      = 10
	MaxAge      = 100
	MinHeightCM = 100
	MaxHeightCM = 250
	MinWeightKG = 30.0
	MaxWeightKG = 300.0
)

var (
	ErrIncomplete    = errors.New("profile: not all answers collected")
	ErrNotComputable = errors.New("profile: derived metrics undefined")
)

// Draft holds the onboarding answers collected so far. Nil means
// unanswered.
type Draft struct {
	Gender   *bodymetrics.Gender
	Age      *int
	HeightCM *int
	WeightKG *float64
	Activity *bodymetrics.Activity
	Goal     *bodymetrics.Goal
}

// SetGender records a gender answer; unrecognized values are rejected.
func (d *Draft) SetGender(g bodymetrics.Gender) bool {
	if !g.Valid() {
		return false
	}
	d.Gender = &g
	return true
}

// SetAge records an age answer if it is in range.
func (d *Draft) SetAge(age int) bool {
	if age < MinAge || age > MaxAge {
		return false
	}
	d.Age = &age
	return true
}

// SetHeight records a height answer if it is in range.
func (d *Draft) SetHeight(heightCM int) bool {
	if heightCM < MinHeightCM || heightCM > MaxHeightCM {
		return false
	}
	d.HeightCM = &heightCM
	return true
}

// SetWeight records a weight answer if it is in range.
func (d *Draft) SetWeight(weightKG float64) bool {
	if weightKG < MinWeightKG || weightKG > MaxWeightKG {
		return false
	}
	d.WeightKG = &weightKG
	return true
}

// SetActivity records an activity answer; unrecognized levels are rejected.
func (d *Draft) SetActivity(a bodymetrics.Activity) bool {
	if _, ok := a.Multiplier(); !ok {
		return false
	}
	d.Activity = &a
	return true
}

// SetGoal records a goal answer; unrecognized goals are rejected.
func (d *Draft) SetGoal(g bodymetrics.Goal) bool {
	if _, ok := g.CalorieDelta(); !ok {
		return false
	}
	d.Goal = &g
	return true
}

// Profile is a completed fitness profile. Complete is true only when all
// six source fields are set and all four derived metrics were computed.
type Profile struct {
	Gender   bodymetrics.Gender
	Age      int
	HeightCM int
	WeightKG float64
	Activity bodymetrics.Activity
	Goal     bodymetrics.Goal

	BMI        float64
	BMRKcal    int
	TDEEKcal   int
	TargetKcal int

	Complete bool
}

// Finalize validates the draft and computes the derived metrics. It
// either returns a fully complete Profile or an error; partially derived
// profiles are never produced.
func (d *Draft) Finalize() (*Profile, error) {
	if d.Gender == nil || d.Age == nil || d.HeightCM == nil ||
		d.WeightKG == nil || d.Activity == nil || d.Goal == nil {
		return nil, ErrIncomplete
	}

	p := &Profile{
		Gender:   *d.Gender,
		Age:      *d.Age,
		HeightCM: *d.HeightCM,
		WeightKG: *d.WeightKG,
		Activity: *d.Activity,
		Goal:     *d.Goal,
	}
	if err := p.recompute(); err != nil {
		return nil, err
	}
	p.Complete = true
	return p, nil
}

// UpdateWeight replaces the weight and refreshes all four derived
// metrics together. On a rejected or uncomputable update the profile is
// left exactly as it was.
func (p *Profile) UpdateWeight(weightKG float64) error {
	if weightKG < MinWeightKG || weightKG > MaxWeightKG {
		return fmt.Errorf("profile: weight %.1f kg out of range [%v, %v]", weightKG, MinWeightKG, MaxWeightKG)
	}

	next := *p
	next.WeightKG = weightKG
	if err := next.recompute(); err != nil {
		return err
	}
	*p = next
	return nil
}

// recompute derives BMI, BMR, TDEE and target calories from the source
// fields, failing wholesale if any single metric is undefined.
func (p *Profile) recompute() error {
	bmi, ok := bodymetrics.BMI(p.WeightKG, p.HeightCM)
	if !ok {
		return ErrNotComputable
	}
	bmr, ok := bodymetrics.BMR(p.WeightKG, p.HeightCM, p.Age, p.Gender)
	if !ok {
		return ErrNotComputable
	}
	tdee, ok := bodymetrics.TDEE(bmr, p.Activity)
	if !ok {
		return ErrNotComputable
	}
	target, ok := bodymetrics.TargetCalories(tdee, p.Goal)
	if !ok {
		return ErrNotComputable
	}

	p.BMI = bmi
	p.BMRKcal = bmr
	p.TDEEKcal = tdee
	p.TargetKcal = target
	return nil
}
