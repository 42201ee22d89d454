// Package telegram wires the conversation flows to the Telegram Bot API:
// command dispatch, the onboarding and meal-logging state machines, and
// the pass-through requests to the external model.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/config"
	"fitguru-bot/internal/estimator"
	"fitguru-bot/internal/llm"
	"fitguru-bot/internal/metrics"
	"fitguru-bot/internal/session"
)

// llmTimeout bounds every call to the external model. On expiry the
// triggering flow ends without committing partial state.
const llmTimeout = 30 * time.Second

// errModelDisabled is returned by generate when no model API key was
// configured; the rest of the bot keeps working.
var errModelDisabled = errors.New("model features disabled")

// sender is the slice of the Telegram API the handlers need; tests plug
// in a recording fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API, the session store and the AI services.
type Bot struct {
	api       sender
	raw       *tgbotapi.BotAPI
	cfg       *config.Config
	sessions  *session.Store
	textGen   llm.TextGenerator // nil in degraded mode
	meals     *estimator.Estimator
	usage     *metrics.Store
	projector bodymetrics.Projector
	now       func() time.Time
}

// NewBot initializes the Telegram Bot. When a webhook URL is configured
// it is registered with Telegram; otherwise the bot falls back to long
// polling via Run.
func NewBot(cfg *config.Config, textGen llm.TextGenerator, usage *metrics.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook config: %w", err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	b := &Bot{
		api:       api,
		raw:       api,
		cfg:       cfg,
		sessions:  session.NewStore(),
		textGen:   textGen,
		usage:     usage,
		projector: cfg.Projector(),
		now:       time.Now,
	}
	if textGen != nil {
		b.meals = estimator.New(textGen)
	}
	return b, nil
}

// RegisterHandlers registers the webhook and health endpoints with the
// default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.raw.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}
	go b.handleUpdate(*update)
}

// Run consumes updates by long polling until ctx is cancelled. Used when
// no webhook URL is configured.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.raw.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.raw.StopReceivingUpdates()
			return
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate routes one update into the owning chat's session. The
// session lock is held for the whole handler, so updates from the same
// chat never interleave while other chats keep making progress.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		sess := b.sessions.Get(cb.Message.Chat.ID, b.now())
		sess.Lock()
		defer sess.Unlock()
		b.handleCallback(sess, cb)
		return
	}

	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	msg := update.Message
	sess := b.sessions.Get(msg.Chat.ID, b.now())
	sess.Lock()
	defer sess.Unlock()
	b.processMessage(sess, msg)
}

// processMessage is the single dispatch point: commands first, then the
// active state machine, then the free-chat fallback.
func (b *Bot) processMessage(sess *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	defer b.recoverHandler(sess, chatID)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(sess, msg)
		case "cancel":
			b.handleCancel(sess, chatID)
		case "help", "menu":
			b.send(chatID, helpText)
		case "profile":
			b.handleProfileCommand(sess, chatID)
		case "weight":
			b.handleWeightCommand(sess, chatID)
		case "train":
			b.handleTrainCommand(sess, chatID)
		case "addmeal":
			b.handleAddMealCommand(sess, chatID)
		case "todaycalories":
			b.handleTodayCommand(sess, chatID)
		case "metrics":
			b.handleMetricsCommand(msg)
		default:
			b.send(chatID, "I don't know that command. Try /help.")
		}
		return
	}

	switch sess.State {
	case session.StateAwaitAge:
		b.handleAgeInput(sess, msg)
	case session.StateAwaitHeight:
		b.handleHeightInput(sess, msg)
	case session.StateAwaitWeight:
		b.handleWeightAnswer(sess, msg)
	case session.StateAwaitWeightUpdate:
		b.handleWeightUpdateInput(sess, msg)
	case session.StateAwaitMealText:
		b.handleMealDescription(sess, msg)
	case session.StateAwaitGender, session.StateAwaitActivity, session.StateAwaitGoal,
		session.StateAwaitMealSlot, session.StateAwaitTrainLocation:
		// Button-driven states accept buttons only; stray text is ignored.
	default:
		b.handleFreeChat(sess, msg)
	}
}

// handleCallback routes a button press. A payload that doesn't match the
// current state is ignored: button-driven states never re-prompt.
func (b *Bot) handleCallback(sess *session.Session, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	defer b.recoverHandler(sess, chatID)

	// Acknowledge to remove the client-side spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	action, value, ok := strings.Cut(cb.Data, ":")
	if !ok {
		return
	}

	switch action {
	case "gender":
		if sess.State == session.StateAwaitGender {
			b.handleGenderChoice(sess, cb, value)
		}
	case "activity":
		if sess.State == session.StateAwaitActivity {
			b.handleActivityChoice(sess, cb, value)
		}
	case "goal":
		if sess.State == session.StateAwaitGoal {
			b.handleGoalChoice(sess, cb, value)
		}
	case "slot":
		if sess.State == session.StateAwaitMealSlot {
			b.handleSlotChoice(sess, cb, value)
		}
	case "train":
		if sess.State == session.StateAwaitTrainLocation {
			b.handleTrainChoice(sess, cb, value)
		}
	}
}

// recoverHandler is the per-handler boundary for unexpected errors: log,
// apologize, and leave the session in a safe state instead of hung.
func (b *Bot) recoverHandler(sess *session.Session, chatID int64) {
	if r := recover(); r != nil {
		log.Printf("Recovered from panic in handler for chat %d: %v", chatID, r)
		sess.Reset()
		b.send(chatID, "😵 Something went wrong on my side. Please try again.")
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

// sendReturning sends a placeholder message and returns its ID so the
// final answer can be edited in place. Returns 0 on failure.
func (b *Bot) sendReturning(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send placeholder to chat %d: %v", chatID, err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) editWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		b.sendWithKeyboard(chatID, text, keyboard)
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

// generate calls the external model with the dietitian system prompt and
// records usage. A single attempt per user request, never retried.
func (b *Bot) generate(ctx context.Context, agent, system, prompt string) (string, error) {
	if b.textGen == nil {
		return "", errModelDisabled
	}
	start := time.Now()
	resp, err := b.textGen.GenerateContent(ctx, system, prompt)
	b.recordUsage(agent, resp.Usage, time.Since(start))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (b *Bot) recordUsage(agent string, usage llm.TokenUsage, latency time.Duration) {
	if b.usage == nil || (usage.PromptTokens == 0 && usage.CompletionTokens == 0) {
		return
	}
	err := b.usage.Record(context.Background(), metrics.ExecutionMetric{
		AgentName:        agent,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
	})
	if err != nil {
		log.Printf("Failed to record usage metric: %v", err)
	}
}

// isServiceError reports whether err came from the model call itself
// rather than from our handling of its answer.
func isServiceError(err error) bool {
	if llm.IsTimeout(err) || errors.Is(err, context.Canceled) {
		return true
	}
	if _, ok := llm.IsAPIError(err); ok {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// llmErrorMessage maps a model failure to a user-facing explanation,
// distinguishing timeout from connectivity from server error.
func llmErrorMessage(err error) string {
	switch {
	case errors.Is(err, errModelDisabled):
		return "🤖 AI features are currently disabled. The rest of the bot still works."
	case llm.IsTimeout(err):
		return "⌛ The AI took too long to answer. Please try again."
	default:
		if status, ok := llm.IsAPIError(err); ok {
			return fmt.Sprintf("❌ The AI service returned an error (code %d). Please try again later.", status)
		}
		return "📡 Couldn't reach the AI service. Please check back in a moment."
	}
}
