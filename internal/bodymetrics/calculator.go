// Package bodymetrics computes standard body-composition estimates: BMI,
// BMR (Mifflin-St Jeor), TDEE and goal-adjusted calorie targets. All
// functions are pure; invalid input yields ok=false instead of an error.
package bodymetrics

import "math"

// Gender is the biological sex used by the Mifflin-St Jeor formula.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Activity is the self-reported physical activity level.
type Activity string

const (
	ActivityMinimal  Activity = "minimal"
	ActivityLight    Activity = "light"
	ActivityModerate Activity = "moderate"
	ActivityHigh     Activity = "high"
	ActivityExtreme  Activity = "extreme"
)

// activityMultipliers is the single source of truth for valid activity
// levels; it is also used for input validation during onboarding.
var activityMultipliers = map[Activity]float64{
	ActivityMinimal:  1.2,
	ActivityLight:    1.375,
	ActivityModerate: 1.55,
	ActivityHigh:     1.725,
	ActivityExtreme:  1.9,
}

// Goal is what the user wants to do with their weight.
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// goalDeltas maps each goal to its fixed daily calorie adjustment.
var goalDeltas = map[Goal]int{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     300,
}

// Multiplier returns the TDEE multiplier for the activity level.
func (a Activity) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[a]
	return m, ok
}

// CalorieDelta returns the daily calorie adjustment for the goal.
func (g Goal) CalorieDelta() (int, bool) {
	d, ok := goalDeltas[g]
	return d, ok
}

// Valid reports whether g is a recognized gender.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// BMI returns weight/(height/100)^2 rounded to one decimal.
// ok=false when either input is non-positive.
func BMI(weightKG float64, heightCM int) (float64, bool) {
	if weightKG <= 0 || heightCM <= 0 {
		return 0, false
	}
	h := float64(heightCM) / 100
	return math.Round(weightKG/(h*h)*10) / 10, true
}

// BMR estimates the basal metabolic rate in kcal/day using Mifflin-St Jeor.
func BMR(weightKG float64, heightCM, age int, gender Gender) (int, bool) {
	if weightKG <= 0 || heightCM <= 0 || age <= 0 {
		return 0, false
	}
	base := 10*weightKG + 6.25*float64(heightCM) - 5*float64(age)
	switch gender {
	case Male:
		base += 5
	case Female:
		base -= 161
	default:
		return 0, false
	}
	return int(math.Round(base)), true
}

// TDEE scales the BMR by the activity multiplier.
func TDEE(bmr int, activity Activity) (int, bool) {
	mult, ok := activity.Multiplier()
	if !ok || bmr <= 0 {
		return 0, false
	}
	return int(math.Round(float64(bmr) * mult)), true
}

// TargetCalories adjusts the TDEE by the goal's fixed daily delta.
func TargetCalories(tdee int, goal Goal) (int, bool) {
	delta, ok := goal.CalorieDelta()
	if !ok || tdee <= 0 {
		return 0, false
	}
	return tdee + delta, true
}

// Category is a coarse BMI classification.
type Category string

const (
	Underweight Category = "underweight"
	Normal      Category = "normal"
	Overweight  Category = "overweight"
	Obese       Category = "obese"
)

// BMICategory classifies a BMI value. A non-positive BMI returns the
// empty category.
func BMICategory(bmi float64) Category {
	switch {
	case bmi <= 0:
		return ""
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}
