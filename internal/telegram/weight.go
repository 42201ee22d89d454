package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/profile"
	"fitguru-bot/internal/session"
)

// handleWeightCommand starts the weight-update flow.
func (b *Bot) handleWeightCommand(sess *session.Session, chatID int64) {
	if !sess.HasProfile() {
		b.send(chatID, msgNeedProfile)
		return
	}
	sess.Reset()
	sess.State = session.StateAwaitWeightUpdate
	b.send(chatID, fmt.Sprintf("⚖️ Your current weight is %.1f kg. What's the new one? (kg, e.g. 70.5)", sess.Profile.WeightKG))
}

// handleWeightUpdateInput applies a new weight; all derived metrics are
// refreshed together or not at all.
func (b *Bot) handleWeightUpdateInput(sess *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	w, err := parseWeight(msg.Text)
	if err != nil {
		b.send(chatID, fmt.Sprintf("Please send your weight in kilograms, between %v and %v, e.g. 70.5.", profile.MinWeightKG, profile.MaxWeightKG))
		return
	}
	if err := sess.Profile.UpdateWeight(w); err != nil {
		b.send(chatID, fmt.Sprintf("Please send your weight in kilograms, between %v and %v, e.g. 70.5.", profile.MinWeightKG, profile.MaxWeightKG))
		return
	}

	sess.State = session.StateIdle
	p := sess.Profile
	b.send(chatID, fmt.Sprintf(
		"✅ Weight updated to %.1f kg.\n\nBMI: %.1f (%s)\nDaily target: %d kcal\n%s",
		p.WeightKG, p.BMI, bmiLabel(p.BMI), p.TargetKcal, formatProjection(p, b.projector)))
}
