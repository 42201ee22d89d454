package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/profile"
	"fitguru-bot/internal/session"
)

// handleStart begins the onboarding questionnaire. With a completed
// profile the questionnaire is skipped; mid-flow it acts as cancel plus
// restart, so the draft starts over from gender.
func (b *Bot) handleStart(sess *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if sess.HasProfile() {
		b.send(chatID, "👋 Welcome back! Your profile is already set up. Check it with /profile or see /help for everything I can do.")
		return
	}

	sess.Reset()
	sess.Draft = &profile.Draft{}
	sess.State = session.StateAwaitGender

	name := ""
	if msg.From != nil && msg.From.FirstName != "" {
		name = ", " + msg.From.FirstName
	}
	greeting := fmt.Sprintf("👋 Hi%s! I'm your personal fitness assistant. "+
		"Let's set up your profile so I can estimate your calorie needs.\n\n"+
		"First: what's your gender?", name)
	b.sendWithKeyboard(chatID, greeting, genderKeyboard())
}

// handleCancel aborts whatever flow is active. During onboarding the
// draft is discarded; a previously completed profile always survives.
func (b *Bot) handleCancel(sess *session.Session, chatID int64) {
	if sess.State == session.StateIdle {
		b.send(chatID, "Nothing to cancel.")
		return
	}
	onboarding := sess.State.Onboarding()
	sess.Reset()
	if onboarding {
		b.send(chatID, "Profile setup cancelled. Nothing was saved. Run /start whenever you want to try again.")
		return
	}
	b.send(chatID, "Cancelled.")
}

func (b *Bot) handleGenderChoice(sess *session.Session, cb *tgbotapi.CallbackQuery, value string) {
	if sess.Draft == nil || !sess.Draft.SetGender(bodymetrics.Gender(value)) {
		return
	}
	sess.State = session.StateAwaitAge
	b.edit(cb.Message.Chat.ID, cb.Message.MessageID,
		fmt.Sprintf("Gender: %s.\n\nHow old are you? (full years)", value))
}

func (b *Bot) handleAgeInput(sess *session.Session, msg *tgbotapi.Message) {
	age, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || sess.Draft == nil || !sess.Draft.SetAge(age) {
		b.send(msg.Chat.ID, fmt.Sprintf("Please send your age as a whole number between %d and %d, e.g. 25.", profile.MinAge, profile.MaxAge))
		return
	}
	sess.State = session.StateAwaitHeight
	b.send(msg.Chat.ID, fmt.Sprintf("Age: %d.\n\nWhat's your height in centimeters?", age))
}

func (b *Bot) handleHeightInput(sess *session.Session, msg *tgbotapi.Message) {
	height, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || sess.Draft == nil || !sess.Draft.SetHeight(height) {
		b.send(msg.Chat.ID, fmt.Sprintf("Please send your height in centimeters, between %d and %d, e.g. 180.", profile.MinHeightCM, profile.MaxHeightCM))
		return
	}
	sess.State = session.StateAwaitWeight
	b.send(msg.Chat.ID, fmt.Sprintf("Height: %d cm.\n\nWhat's your weight in kilograms?", height))
}

func (b *Bot) handleWeightAnswer(sess *session.Session, msg *tgbotapi.Message) {
	weight, err := parseWeight(msg.Text)
	if err != nil || sess.Draft == nil || !sess.Draft.SetWeight(weight) {
		b.send(msg.Chat.ID, fmt.Sprintf("Please send your weight in kilograms, between %v and %v, e.g. 70.5.", profile.MinWeightKG, profile.MaxWeightKG))
		return
	}
	sess.State = session.StateAwaitActivity
	b.sendWithKeyboard(msg.Chat.ID,
		fmt.Sprintf("Weight: %.1f kg.\n\nHow active are you on a typical week?", weight),
		activityKeyboard())
}

func (b *Bot) handleActivityChoice(sess *session.Session, cb *tgbotapi.CallbackQuery, value string) {
	if sess.Draft == nil || !sess.Draft.SetActivity(bodymetrics.Activity(value)) {
		return
	}
	sess.State = session.StateAwaitGoal
	b.editWithKeyboard(cb.Message.Chat.ID, cb.Message.MessageID,
		"Got it.\n\nLast question: what's your goal?", goalKeyboard())
}

// handleGoalChoice is the final onboarding step: the draft is finalized
// and all derived metrics computed in one go. On failure nothing is
// committed and the user is told to start over.
func (b *Bot) handleGoalChoice(sess *session.Session, cb *tgbotapi.CallbackQuery, value string) {
	chatID := cb.Message.Chat.ID
	if sess.Draft == nil || !sess.Draft.SetGoal(bodymetrics.Goal(value)) {
		return
	}

	p, err := sess.Draft.Finalize()
	if err != nil {
		sess.State = session.StateIdle
		b.edit(chatID, cb.Message.MessageID,
			"😕 I couldn't compute your profile from those answers. Please run /start to try again.")
		return
	}

	sess.Profile = p
	sess.Draft = nil
	sess.State = session.StateIdle
	b.edit(chatID, cb.Message.MessageID,
		"🎉 Your profile is ready!\n\n"+formatProfile(p, b.projector))
}

// handleProfileCommand shows the stored profile and derived metrics.
func (b *Bot) handleProfileCommand(sess *session.Session, chatID int64) {
	if !sess.HasProfile() {
		b.send(chatID, msgNeedProfile)
		return
	}
	b.send(chatID, formatProfile(sess.Profile, b.projector))
}

// parseWeight accepts a decimal comma as well as a decimal point.
func parseWeight(text string) (float64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	return strconv.ParseFloat(text, 64)
}
