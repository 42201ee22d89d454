package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/config"
	"fitguru-bot/internal/estimator"
	"fitguru-bot/internal/llm"
	"fitguru-bot/internal/session"
)

// fakeSender records everything the bot tries to send.
type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	msgID    int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.msgID++
	return tgbotapi.Message{MessageID: f.msgID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// lastText returns the text of the most recent send or edit.
func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	default:
		t.Fatalf("unexpected chattable type %T", c)
		return ""
	}
}

type fakeTextGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeTextGenerator) GenerateContent(_ context.Context, _, prompt string) (llm.ContentResponse, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return llm.ContentResponse{}, f.err
	}
	return llm.ContentResponse{Content: f.response}, nil
}

func newTestBot(textGen llm.TextGenerator) (*Bot, *fakeSender) {
	api := &fakeSender{}
	cfg := &config.Config{
		AdminTelegramID:        99,
		DatabasePath:           "data/test.db",
		KcalPerKG:              bodymetrics.DefaultKcalPerKG,
		MaintenanceThresholdKG: bodymetrics.DefaultMaintenanceThresholdKG,
	}
	b := &Bot{
		api:       api,
		cfg:       cfg,
		sessions:  session.NewStore(),
		textGen:   textGen,
		projector: cfg.Projector(),
		now:       time.Now,
	}
	if textGen != nil {
		b.meals = estimator.New(textGen)
	}
	return b, api
}

func sendCommand(b *Bot, chatID int64, userID int64, cmd string) {
	text := "/" + cmd
	b.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}})
}

func sendText(b *Bot, chatID int64, text string) {
	b.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
		Text: text,
	}})
}

func press(b *Bot, chatID int64, data string) {
	b.handleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}},
	}})
}

// completeOnboarding walks a chat through the full questionnaire.
func completeOnboarding(b *Bot, chatID int64) {
	sendCommand(b, chatID, chatID, "start")
	press(b, chatID, "gender:male")
	sendText(b, chatID, "30")
	sendText(b, chatID, "180")
	sendText(b, chatID, "80")
	press(b, chatID, "activity:moderate")
	press(b, chatID, "goal:lose")
}

func TestOnboardingHappyPath(t *testing.T) {
	b, api := newTestBot(nil)
	completeOnboarding(b, 1)

	sess := b.sessions.Get(1, time.Now())
	if !sess.HasProfile() {
		t.Fatal("expected a completed profile after onboarding")
	}
	p := sess.Profile
	if p.BMRKcal != 1780 || p.TDEEKcal != 2759 || p.TargetKcal != 2259 {
		t.Errorf("unexpected derived metrics: BMR=%d TDEE=%d target=%d", p.BMRKcal, p.TDEEKcal, p.TargetKcal)
	}
	if p.BMI != 24.7 {
		t.Errorf("expected BMI 24.7, got %v", p.BMI)
	}
	if sess.State != session.StateIdle {
		t.Errorf("expected idle state after onboarding, got %d", sess.State)
	}
	if got := api.lastText(t); !strings.Contains(got, "2259") {
		t.Errorf("expected the summary to include the calorie target, got %q", got)
	}
}

func TestOnboardingInvalidAgeKeepsState(t *testing.T) {
	b, api := newTestBot(nil)
	sendCommand(b, 1, 1, "start")
	press(b, 1, "gender:female")
	sendText(b, 1, "abc")

	sess := b.sessions.Get(1, time.Now())
	if sess.State != session.StateAwaitAge {
		t.Errorf("expected to stay awaiting age, got state %d", sess.State)
	}
	if got := api.lastText(t); !strings.Contains(got, "10 and 100") {
		t.Errorf("expected a range hint, got %q", got)
	}

	sendText(b, 1, "250")
	if sess.State != session.StateAwaitAge {
		t.Error("out-of-range age must be rejected")
	}

	sendText(b, 1, "25")
	if sess.State != session.StateAwaitHeight {
		t.Errorf("expected to advance to height, got state %d", sess.State)
	}
}

func TestCancelMidOnboardingDiscardsDraft(t *testing.T) {
	b, _ := newTestBot(nil)
	sendCommand(b, 1, 1, "start")
	press(b, 1, "gender:male")
	sendText(b, 1, "30")
	sendCommand(b, 1, 1, "cancel")

	sess := b.sessions.Get(1, time.Now())
	if sess.State != session.StateIdle || sess.Draft != nil {
		t.Errorf("expected cancel to discard the draft: %+v", sess)
	}
	if sess.HasProfile() {
		t.Error("cancel must not fabricate a profile")
	}

	// A fresh /start begins again from the first question.
	sendCommand(b, 1, 1, "start")
	if sess.State != session.StateAwaitGender {
		t.Errorf("expected restart from gender, got state %d", sess.State)
	}
	if sess.Draft == nil || sess.Draft.Age != nil {
		t.Error("expected a fresh, empty draft")
	}
}

func TestStartWithCompletedProfileSkipsQuestions(t *testing.T) {
	b, api := newTestBot(nil)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "start")
	sess := b.sessions.Get(1, time.Now())
	if sess.State != session.StateIdle {
		t.Errorf("expected /start to be a no-op with a profile, got state %d", sess.State)
	}
	if got := api.lastText(t); !strings.Contains(got, "Welcome back") {
		t.Errorf("expected a welcome-back message, got %q", got)
	}
}

func TestStrayCallbackIsIgnored(t *testing.T) {
	b, _ := newTestBot(nil)
	completeOnboarding(b, 1)

	press(b, 1, "goal:gain")

	sess := b.sessions.Get(1, time.Now())
	if sess.Profile.Goal != bodymetrics.GoalLose {
		t.Error("a callback outside its state must not change the profile")
	}
}

const goodEstimate = `{
	"items": [
		{"name": "eggs", "quantity": "2", "calories": 180, "protein_g": 12, "fat_g": 14, "carbs_g": 1},
		{"name": "toast", "quantity": "1 slice", "calories": 225, "protein_g": 5, "fat_g": 9, "carbs_g": 30}
	],
	"total": {"calories": 405, "protein_g": 17, "fat_g": 23, "carbs_g": 31}
}`

func TestMealLogging(t *testing.T) {
	gen := &fakeTextGenerator{response: goodEstimate}
	b, api := newTestBot(gen)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "addmeal")
	press(b, 1, "slot:lunch")
	sendText(b, 1, "2 eggs and a slice of toast")

	sess := b.sessions.Get(1, time.Now())
	meals := sess.Ledger.Meals(time.Now())
	if len(meals) != 1 {
		t.Fatalf("expected 1 logged meal, got %d", len(meals))
	}
	if meals[0].Slot != "lunch" || meals[0].Total.Calories != 405 {
		t.Errorf("unexpected meal record: %+v", meals[0])
	}
	if !strings.Contains(gen.lastPrompt, "2 eggs") {
		t.Error("expected the description to reach the model prompt")
	}
	got := api.lastText(t)
	if !strings.Contains(got, "405") || !strings.Contains(got, "Remaining") {
		t.Errorf("expected total and remaining budget in the confirmation, got %q", got)
	}
	if sess.State != session.StateIdle {
		t.Errorf("expected idle after logging, got state %d", sess.State)
	}
}

func TestMealRejectionLeavesLedgerUnchanged(t *testing.T) {
	gen := &fakeTextGenerator{response: `{"items": [{"name": "mystery", "quantity": "?"}]}`}
	b, api := newTestBot(gen)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "addmeal")
	press(b, 1, "slot:dinner")
	sendText(b, 1, "something vague")

	sess := b.sessions.Get(1, time.Now())
	if len(sess.Ledger.Meals(time.Now())) != 0 {
		t.Error("a rejected estimate must not reach the ledger")
	}
	if got := api.lastText(t); !strings.Contains(got, "Nothing was logged") {
		t.Errorf("expected a rejection notice, got %q", got)
	}
}

func TestTodayCaloriesEmptyDay(t *testing.T) {
	b, api := newTestBot(nil)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "todaycalories")
	if got := api.lastText(t); !strings.Contains(got, "No meals logged") || !strings.Contains(got, "2259") {
		t.Errorf("expected empty-day summary with target, got %q", got)
	}
}

func TestWeightUpdateRecomputesMetrics(t *testing.T) {
	b, api := newTestBot(nil)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "weight")
	sendText(b, 1, "75")

	sess := b.sessions.Get(1, time.Now())
	p := sess.Profile
	if p.WeightKG != 75 {
		t.Errorf("expected weight 75, got %v", p.WeightKG)
	}
	if p.BMRKcal != 1730 || p.TDEEKcal != 2682 || p.TargetKcal != 2182 {
		t.Errorf("expected refreshed metrics, got BMR=%d TDEE=%d target=%d", p.BMRKcal, p.TDEEKcal, p.TargetKcal)
	}
	if got := api.lastText(t); !strings.Contains(got, "75.0") {
		t.Errorf("expected the new weight in the confirmation, got %q", got)
	}
}

func TestWeightUpdateRejectsOutOfRange(t *testing.T) {
	b, _ := newTestBot(nil)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "weight")
	sendText(b, 1, "500")

	sess := b.sessions.Get(1, time.Now())
	if sess.Profile.WeightKG != 80 {
		t.Errorf("rejected update must leave the profile untouched, got %v", sess.Profile.WeightKG)
	}
	if sess.State != session.StateAwaitWeightUpdate {
		t.Error("expected to stay in the weight prompt after a rejected value")
	}
}

func TestCommandsRequireProfile(t *testing.T) {
	b, api := newTestBot(nil)
	for _, cmd := range []string{"weight", "addmeal", "todaycalories", "train", "profile"} {
		sendCommand(b, 1, 1, cmd)
		if got := api.lastText(t); !strings.Contains(got, "/start") {
			t.Errorf("%s without a profile should redirect to /start, got %q", cmd, got)
		}
	}
}

func TestFreeChatUsesProfileContext(t *testing.T) {
	gen := &fakeTextGenerator{response: "Eat more protein."}
	b, api := newTestBot(gen)
	completeOnboarding(b, 1)

	sendText(b, 1, "how much protein do I need?")

	if !strings.Contains(gen.lastPrompt, "how much protein do I need?") {
		t.Error("expected the question in the prompt")
	}
	if got := api.lastText(t); got != "Eat more protein." {
		t.Errorf("expected the model answer verbatim, got %q", got)
	}
}

func TestDegradedModeWithoutModel(t *testing.T) {
	b, api := newTestBot(nil)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "addmeal")
	if got := api.lastText(t); !strings.Contains(got, "disabled") {
		t.Errorf("expected the disabled notice, got %q", got)
	}

	sendText(b, 1, "any advice?")
	if got := api.lastText(t); !strings.Contains(got, "disabled") {
		t.Errorf("expected the disabled notice for free chat, got %q", got)
	}

	// Onboarding and the calculator still work without a model.
	sess := b.sessions.Get(1, time.Now())
	if !sess.HasProfile() {
		t.Error("profile features must survive degraded mode")
	}
}

func TestMetricsCommandIsAdminOnly(t *testing.T) {
	b, api := newTestBot(nil)

	sendCommand(b, 1, 1, "metrics")
	if got := api.lastText(t); !strings.Contains(got, "admin") {
		t.Errorf("expected an admin-only refusal, got %q", got)
	}

	sendCommand(b, 2, 99, "metrics")
	if got := api.lastText(t); strings.Contains(got, "admin") {
		t.Errorf("expected the admin to pass the gate, got %q", got)
	}
}

func TestTrainGeneratesWorkout(t *testing.T) {
	gen := &fakeTextGenerator{response: "Day plan: squats."}
	b, api := newTestBot(gen)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "train")
	press(b, 1, "train:home")

	if !strings.Contains(gen.lastPrompt, "without any equipment") {
		t.Errorf("expected the home-location line in the prompt, got %q", gen.lastPrompt)
	}
	if got := api.lastText(t); got != "Day plan: squats." {
		t.Errorf("expected the workout verbatim, got %q", got)
	}
}

func TestModelTimeoutMessage(t *testing.T) {
	gen := &fakeTextGenerator{err: context.DeadlineExceeded}
	b, api := newTestBot(gen)
	completeOnboarding(b, 1)

	sendText(b, 1, "will I make it?")
	if got := api.lastText(t); !strings.Contains(got, "too long") {
		t.Errorf("expected a timeout explanation, got %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	b, api := newTestBot(nil)
	sendCommand(b, 1, 1, "fly")
	if got := api.lastText(t); !strings.Contains(got, "/help") {
		t.Errorf("expected a pointer to /help, got %q", got)
	}
}

func TestIndependentChatsDoNotShareState(t *testing.T) {
	b, _ := newTestBot(nil)
	completeOnboarding(b, 1)
	sendCommand(b, 2, 2, "start")

	one := b.sessions.Get(1, time.Now())
	two := b.sessions.Get(2, time.Now())
	if !one.HasProfile() || two.HasProfile() {
		t.Error("profile state leaked between chats")
	}
	if two.State != session.StateAwaitGender {
		t.Errorf("expected chat 2 mid-onboarding, got state %d", two.State)
	}
}

func TestProfileCommandShowsDisclaimer(t *testing.T) {
	b, api := newTestBot(nil)
	completeOnboarding(b, 1)

	sendCommand(b, 1, 1, "profile")
	got := api.lastText(t)
	for _, want := range []string{"1780", "2759", "2259", "24.7", "estimates"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in the profile summary, got %q", want, got)
		}
	}
	if !strings.Contains(got, "lose about 0.45 kg") {
		t.Errorf("expected the weekly projection, got %q", got)
	}
}

func TestProfileCheckUsesGoalDeltaOfProjection(t *testing.T) {
	b, _ := newTestBot(nil)
	completeOnboarding(b, 1)

	sess := b.sessions.Get(1, time.Now())
	line := formatProjection(sess.Profile, b.projector)
	if !strings.Contains(line, "lose") {
		t.Errorf("expected a losing projection for a -500 kcal goal, got %q", line)
	}
}
