package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/estimator"
	"fitguru-bot/internal/ledger"
	"fitguru-bot/internal/session"
)

// handleAddMealCommand starts the meal-logging flow: slot first, then a
// free-form description.
func (b *Bot) handleAddMealCommand(sess *session.Session, chatID int64) {
	if !sess.HasProfile() {
		b.send(chatID, msgNeedProfile)
		return
	}
	if b.meals == nil {
		b.send(chatID, llmErrorMessage(errModelDisabled))
		return
	}
	sess.Reset()
	sess.State = session.StateAwaitMealSlot
	b.sendWithKeyboard(chatID, "🍽 Which meal is this?", slotKeyboard())
}

func (b *Bot) handleSlotChoice(sess *session.Session, cb *tgbotapi.CallbackQuery, value string) {
	slot := ledger.MealSlot(value)
	if !slot.Valid() {
		return
	}
	sess.PendingSlot = slot
	sess.State = session.StateAwaitMealText
	b.edit(cb.Message.Chat.ID, cb.Message.MessageID,
		fmt.Sprintf("%s it is. Describe what you ate, with rough amounts — e.g. \"2 eggs, a slice of toast with butter and a glass of orange juice\".", slotTitle(slot)))
}

// handleMealDescription sends the description to the model, validates
// the estimate and appends it to today's ledger. A rejected or failed
// estimate leaves the ledger untouched.
func (b *Bot) handleMealDescription(sess *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	slot := sess.PendingSlot
	sess.Reset()

	if b.meals == nil {
		b.send(chatID, llmErrorMessage(errModelDisabled))
		return
	}

	placeholder := b.sendReturning(chatID, "🔎 Counting calories...")

	ctx, cancel := context.WithTimeout(context.Background(), llmTimeout)
	defer cancel()

	start := time.Now()
	est, err := b.meals.EstimateMeal(ctx, estimator.Request{
		Description: msg.Text,
		TargetKcal:  sess.Profile.TargetKcal,
		WeightKG:    sess.Profile.WeightKG,
		Goal:        sess.Profile.Goal,
	})
	if err != nil {
		b.edit(chatID, placeholder, mealFailureMessage(err))
		return
	}
	b.recordUsage("estimator", est.Usage, time.Since(start))

	now := b.now()
	sess.Ledger.Append(now, ledger.MealRecord{
		Slot:     slot,
		UserText: msg.Text,
		Items:    est.Items,
		Total:    est.Total,
	})

	remaining := sess.Ledger.Remaining(now, sess.Profile.TargetKcal)
	b.edit(chatID, placeholder, formatMealLogged(slot, est, remaining))
}

// mealFailureMessage separates "the model answered but not usably" from
// "the model call itself failed".
func mealFailureMessage(err error) string {
	if errors.Is(err, estimator.ErrNoTotal) {
		return "🤷 I couldn't work out the calories from that description. Nothing was logged — try again with more detail about the foods and amounts."
	}
	if errors.Is(err, errModelDisabled) || isServiceError(err) {
		return llmErrorMessage(err)
	}
	return "🤷 I couldn't make sense of the estimate for that meal. Nothing was logged — please rephrase and try /addmeal again."
}

// handleTodayCommand renders today's meal log and the calorie balance.
func (b *Bot) handleTodayCommand(sess *session.Session, chatID int64) {
	if !sess.HasProfile() {
		b.send(chatID, msgNeedProfile)
		return
	}
	b.send(chatID, formatDaySummary(sess.Ledger, b.now(), sess.Profile.TargetKcal))
}
