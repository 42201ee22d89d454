// Package ledger keeps the meals logged for the current calendar day.
// The ledger is scoped to one chat and one day: every read and write
// first checks whether the observed date has rolled over, and clears
// itself if so, so meals from two days are never mixed.
package ledger

import "time"

// MealSlot is a coarse categorization of a logged meal.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// Valid reports whether s is one of the four fixed slots.
func (s MealSlot) Valid() bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return true
	}
	return false
}

// Macros is a calorie and macronutrient total.
type Macros struct {
	Calories float64
	ProteinG float64
	FatG     float64
	CarbsG   float64
}

// Add returns the element-wise sum of two totals.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		ProteinG: m.ProteinG + o.ProteinG,
		FatG:     m.FatG + o.FatG,
		CarbsG:   m.CarbsG + o.CarbsG,
	}
}

// MealItem is one food item of a decomposed meal.
type MealItem struct {
	Name     string
	Quantity string
	Calories float64
	ProteinG float64
	FatG     float64
	CarbsG   float64
}

// MealRecord is one logged meal. Total is mandatory; a record without a
// validated total is never appended to the ledger.
type MealRecord struct {
	Slot      MealSlot
	UserText  string
	Items     []MealItem
	Total     Macros
	CreatedAt time.Time
}

// DayLedger is the ordered meal log for a single calendar day.
type DayLedger struct {
	date  time.Time
	meals []MealRecord
}

// New returns an empty ledger for the day containing now.
func New(now time.Time) *DayLedger {
	return &DayLedger{date: startOfDay(now)}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// rollover clears the ledger when the calendar date has changed. It runs
// before every read and write.
func (l *DayLedger) rollover(now time.Time) {
	day := startOfDay(now)
	if !day.Equal(l.date) {
		l.date = day
		l.meals = nil
	}
}

// Date returns the calendar day the ledger currently applies to.
func (l *DayLedger) Date(now time.Time) time.Time {
	l.rollover(now)
	return l.date
}

// Append records a meal for today, in insertion order.
func (l *DayLedger) Append(now time.Time, rec MealRecord) {
	l.rollover(now)
	rec.CreatedAt = now
	l.meals = append(l.meals, rec)
}

// Meals returns today's meals in chronological order.
func (l *DayLedger) Meals(now time.Time) []MealRecord {
	l.rollover(now)
	return l.meals
}

// Totals sums calories and macros over today's meals.
func (l *DayLedger) Totals(now time.Time) Macros {
	l.rollover(now)
	var total Macros
	for _, m := range l.meals {
		total = total.Add(m.Total)
	}
	return total
}

// Remaining returns targetKcal minus today's consumed calories. A
// negative result is an overage.
func (l *DayLedger) Remaining(now time.Time, targetKcal int) float64 {
	return float64(targetKcal) - l.Totals(now).Calories
}
