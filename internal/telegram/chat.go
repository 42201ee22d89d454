package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/coach"
	"fitguru-bot/internal/metrics"
	"fitguru-bot/internal/session"
)

// handleFreeChat answers an arbitrary fitness question with the profile
// as context. Requires a completed profile so answers stay personal.
func (b *Bot) handleFreeChat(sess *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !sess.HasProfile() {
		b.send(chatID, msgNeedProfile)
		return
	}
	if b.textGen == nil {
		b.send(chatID, llmErrorMessage(errModelDisabled))
		return
	}

	placeholder := b.sendReturning(chatID, "🤔 Thinking...")

	prompt, err := coach.AdvicePrompt(sess.Profile, msg.Text)
	if err != nil {
		b.edit(chatID, placeholder, "😵 Something went wrong on my side. Please try again.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), llmTimeout)
	defer cancel()

	reply, err := b.generate(ctx, "coach", coach.SystemPrompt(), prompt)
	if err != nil {
		b.edit(chatID, placeholder, llmErrorMessage(err))
		return
	}
	b.edit(chatID, placeholder, reply)
}

// handleMetricsCommand reports model usage and process health. Admin only.
func (b *Bot) handleMetricsCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.cfg.AdminTelegramID == 0 || msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID {
		b.send(chatID, "⛔ This command is for the bot admin.")
		return
	}
	if b.usage == nil {
		b.send(chatID, "No metrics store configured.")
		return
	}

	usage, err := b.usage.GetDailyUsage(context.Background(), 7)
	if err != nil {
		b.send(chatID, fmt.Sprintf("Failed to read metrics: %v", err))
		return
	}
	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))

	var sb strings.Builder
	sb.WriteString("📊 *Model usage, last 7 days*\n")
	if len(usage) == 0 {
		sb.WriteString("No model calls recorded.\n")
	}
	for _, u := range usage {
		sb.WriteString(fmt.Sprintf("%s — %d calls, %d prompt / %d completion tokens\n",
			u.Date, u.TotalExecution, u.TotalPrompt, u.TotalCompletion))
	}
	sb.WriteString(fmt.Sprintf("\n*Process*: %d goroutines, %d MB alloc / %d MB sys, data %s\n",
		health.Goroutines, health.AllocMB, health.SysMB, health.DataSize))
	sb.WriteString(fmt.Sprintf("*Sessions*: %d", b.sessions.Len()))

	b.send(chatID, sb.String())
}
