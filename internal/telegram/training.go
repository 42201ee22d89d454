package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/coach"
	"fitguru-bot/internal/session"
)

// handleTrainCommand asks where the user wants to train, then hands the
// choice to the model for a workout plan.
func (b *Bot) handleTrainCommand(sess *session.Session, chatID int64) {
	if !sess.HasProfile() {
		b.send(chatID, msgNeedProfile)
		return
	}
	if b.textGen == nil {
		b.send(chatID, llmErrorMessage(errModelDisabled))
		return
	}
	sess.Reset()
	sess.State = session.StateAwaitTrainLocation
	b.sendWithKeyboard(chatID, "🏋️ Where will you train today?", trainKeyboard())
}

func (b *Bot) handleTrainChoice(sess *session.Session, cb *tgbotapi.CallbackQuery, value string) {
	loc := coach.Location(value)
	if !loc.Valid() {
		return
	}
	chatID := cb.Message.Chat.ID
	sess.Reset()
	b.edit(chatID, cb.Message.MessageID, "🏋️ Putting your workout together...")

	prompt, err := coach.WorkoutPrompt(sess.Profile, loc)
	if err != nil {
		b.edit(chatID, cb.Message.MessageID, "😵 Something went wrong on my side. Please try again.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), llmTimeout)
	defer cancel()

	reply, err := b.generate(ctx, "coach", coach.SystemPrompt(), prompt)
	if err != nil {
		b.edit(chatID, cb.Message.MessageID, llmErrorMessage(err))
		return
	}
	b.edit(chatID, cb.Message.MessageID, reply)
}
