package telegram

import (
	"fmt"
	"math"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/estimator"
	"fitguru-bot/internal/ledger"
	"fitguru-bot/internal/profile"
)

const msgNeedProfile = "I need your profile for that. Run /start to set it up — it takes under a minute."

const helpText = `Here's what I can do:

/start — set up your fitness profile
/profile — show your profile and calorie targets
/weight — log a new weight
/addmeal — log a meal and get a calorie estimate
/todaycalories — today's meals and calorie balance
/train — get a workout for home, gym or outdoors
/cancel — abort the current step

You can also just ask me any fitness or nutrition question.`

func genderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👨 Male", "gender:male"),
			tgbotapi.NewInlineKeyboardButtonData("👩 Female", "gender:female"),
		),
	)
}

func activityKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛋 Minimal (desk job, no sport)", "activity:minimal"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚶 Light (1-3 workouts/week)", "activity:light"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏃 Moderate (3-5 workouts/week)", "activity:moderate"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💪 High (6-7 workouts/week)", "activity:high"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔥 Extreme (physical job + training)", "activity:extreme"),
		),
	)
}

func goalKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📉 Lose weight", "goal:lose"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Maintain", "goal:maintain"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Gain muscle", "goal:gain"),
		),
	)
}

func slotKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍳 Breakfast", "slot:breakfast"),
			tgbotapi.NewInlineKeyboardButtonData("🥗 Lunch", "slot:lunch"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍝 Dinner", "slot:dinner"),
			tgbotapi.NewInlineKeyboardButtonData("🍎 Snack", "slot:snack"),
		),
	)
}

func trainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Home", "train:home"),
			tgbotapi.NewInlineKeyboardButtonData("🏋️ Gym", "train:gym"),
			tgbotapi.NewInlineKeyboardButtonData("🌳 Outdoors", "train:outdoor"),
		),
	)
}

// formatProfile renders the stored answers, the derived metrics and the
// weekly projection, always ending with the estimate disclaimer.
func formatProfile(p *profile.Profile, projector bodymetrics.Projector) string {
	var sb strings.Builder
	sb.WriteString("*Your profile*\n")
	sb.WriteString(fmt.Sprintf("Gender: %s\nAge: %d\nHeight: %d cm\nWeight: %.1f kg\n", p.Gender, p.Age, p.HeightCM, p.WeightKG))
	sb.WriteString(fmt.Sprintf("Activity: %s\nGoal: %s\n\n", p.Activity, p.Goal))
	sb.WriteString(fmt.Sprintf("BMI: %.1f (%s)\n", p.BMI, bmiLabel(p.BMI)))
	sb.WriteString(fmt.Sprintf("Base metabolic rate: %d kcal\n", p.BMRKcal))
	sb.WriteString(fmt.Sprintf("Daily expenditure: %d kcal\n", p.TDEEKcal))
	sb.WriteString(fmt.Sprintf("Daily target: *%d kcal*\n\n", p.TargetKcal))
	sb.WriteString(formatProjection(p, projector))
	sb.WriteString("\n\n_These are estimates, not medical advice._")
	return sb.String()
}

// formatProjection turns the calorie delta into an expected weekly
// weight change, or a maintenance line when the delta is noise.
func formatProjection(p *profile.Profile, projector bodymetrics.Projector) string {
	weekly := projector.WeeklyChangeKG(p.TDEEKcal, p.TargetKcal)
	if projector.IsMaintenance(weekly) {
		return "At this target your weight should hold steady."
	}
	if weekly < 0 {
		return fmt.Sprintf("At this target you can expect to lose about %.2f kg per week.", math.Abs(weekly))
	}
	return fmt.Sprintf("At this target you can expect to gain about %.2f kg per week.", weekly)
}

func bmiLabel(bmi float64) string {
	switch bodymetrics.BMICategory(bmi) {
	case bodymetrics.Underweight:
		return "underweight"
	case bodymetrics.Normal:
		return "normal"
	case bodymetrics.Overweight:
		return "overweight"
	case bodymetrics.Obese:
		return "obese"
	}
	return "unknown"
}

func slotTitle(s ledger.MealSlot) string {
	switch s {
	case ledger.SlotBreakfast:
		return "Breakfast"
	case ledger.SlotLunch:
		return "Lunch"
	case ledger.SlotDinner:
		return "Dinner"
	case ledger.SlotSnack:
		return "Snack"
	}
	return string(s)
}

// formatMealLogged confirms a logged meal: per-item breakdown, the meal
// total, and how the day's budget now stands.
func formatMealLogged(slot ledger.MealSlot, est *estimator.Estimate, remaining float64) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ *%s logged*\n\n", slotTitle(slot)))
	for _, it := range est.Items {
		sb.WriteString(fmt.Sprintf("• %s (%s): %.0f kcal\n", it.Name, it.Quantity, it.Calories))
	}
	sb.WriteString(fmt.Sprintf("\nMeal total: *%.0f kcal* (P %.0fg / F %.0fg / C %.0fg)\n",
		est.Total.Calories, est.Total.ProteinG, est.Total.FatG, est.Total.CarbsG))
	sb.WriteString(remainingLine(remaining))
	return sb.String()
}

// formatDaySummary renders today's meal log and the calorie balance.
func formatDaySummary(l *ledger.DayLedger, now time.Time, targetKcal int) string {
	meals := l.Meals(now)
	if len(meals) == 0 {
		return fmt.Sprintf("No meals logged today yet. Your target is *%d kcal* — log one with /addmeal.", targetKcal)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Today, %s*\n\n", l.Date(now).Format("Mon 2 Jan")))
	for _, m := range meals {
		sb.WriteString(fmt.Sprintf("%s — %.0f kcal\n", slotTitle(m.Slot), m.Total.Calories))
	}
	totals := l.Totals(now)
	sb.WriteString(fmt.Sprintf("\nConsumed: *%.0f kcal* of %d (P %.0fg / F %.0fg / C %.0fg)\n",
		totals.Calories, targetKcal, totals.ProteinG, totals.FatG, totals.CarbsG))
	sb.WriteString(remainingLine(l.Remaining(now, targetKcal)))
	return sb.String()
}

func remainingLine(remaining float64) string {
	if remaining >= 0 {
		return fmt.Sprintf("Remaining today: *%.0f kcal*", remaining)
	}
	return fmt.Sprintf("⚠️ Over target by *%.0f kcal* today", -remaining)
}
