package bot

import (
	"context"
	"errors"
	"image"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"fitplan/internal/ai"
	"fitplan/internal/db"
	"fitplan/internal/models"
	"fitplan/internal/nutrition"
	"fitplan/pkg/logger"
)

// fakeAPI records outgoing messages instead of calling Telegram.
type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	fileURL string
	fileErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) {
	return f.fileURL, f.fileErr
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1].Text
}

// failingChat is a configured provider whose calls always fail.
type failingChat struct{}

func (failingChat) Configured() bool { return true }

func (failingChat) Source() string { return "failing" }

func (failingChat) Chat(context.Context, string, *models.Profile) (string, error) {
	return "", errors.New("quota exceeded")
}

func (failingChat) AnalyzeImage(context.Context, []byte, string) (*ai.Analysis, error) {
	return nil, errors.New("quota exceeded")
}

const userID = 42

func setupBot(t *testing.T, client ai.Client) (*TelegramBot, *fakeAPI, *db.MemoryStore) {
	t.Helper()
	api := &fakeAPI{}
	store := db.NewMemoryStore()
	if client == nil {
		client = ai.NewMock()
	}
	return newTelegramBot(api, store, client, time.Second, logger.NewNop()), api, store
}

func textUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "tester"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func TestWizard_SavesProfileAndSendsPlan(t *testing.T) {
	bot, api, store := setupBot(t, nil)
	ctx := context.Background()

	for _, text := range []string{"/start", "Male", "30", "175", "70", "active", "mixed", confirmYes} {
		bot.handleUpdate(ctx, textUpdate(text))
	}

	p, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p == nil {
		t.Fatal("profile was not saved")
	}
	if *p.Gender != "male" || *p.Age != 30 || *p.HeightCM != 175 || *p.WeightKG != 70 ||
		*p.ActivityLevel != "active" || *p.DietaryPref != "mixed" {
		t.Errorf("unexpected profile: %s", formatProfile(p))
	}

	plan := api.last(t)
	if !strings.Contains(plan, "Daily target: 2844 kcal") {
		t.Errorf("plan message = %q", plan)
	}
	if _, inProgress := bot.userStates[userID]; inProgress {
		t.Error("wizard state should be cleared after saving")
	}
}

func TestWizard_InvalidAnswersAreRepeated(t *testing.T) {
	tests := []struct {
		state string
		input string
	}{
		{StateGender, "robot"},
		{StateAge, "abc"},
		{StateAge, "7"},
		{StateHeight, "20"},
		{StateHeight, "tall"},
		{StateWeight, "500"},
		{StateActivity, "extreme"},
		{StateDiet, "keto"},
		{StateConfirm, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.state+"/"+tt.input, func(t *testing.T) {
			s := &userState{CurrentState: tt.state}
			step := s.advance(tt.input)
			if step.done {
				t.Fatal("invalid answer completed the wizard")
			}
			if s.CurrentState != tt.state {
				t.Errorf("state moved to %q", s.CurrentState)
			}
			if !strings.HasPrefix(step.reply, "Please") {
				t.Errorf("reply = %q", step.reply)
			}
		})
	}
}

func TestWizard_AcceptsLooseInput(t *testing.T) {
	s := &userState{CurrentState: StateHeight}
	s.advance("172,5")
	if s.Draft.HeightCM == nil || *s.Draft.HeightCM != 172.5 {
		t.Fatalf("height = %v", s.Draft.HeightCM)
	}

	s.CurrentState = StateActivity
	s.advance("Very Active")
	if s.Draft.ActivityLevel == nil || *s.Draft.ActivityLevel != "very_active" {
		t.Fatalf("activity = %v", s.Draft.ActivityLevel)
	}
}

func TestWizard_StartOver(t *testing.T) {
	s := &userState{CurrentState: StateConfirm, Draft: models.Profile{Gender: models.String("female")}}
	step := s.advance(confirmNo)
	if step.done {
		t.Fatal("start over should not complete")
	}
	if s.CurrentState != StateGender || !s.Draft.IsEmpty() {
		t.Errorf("state not reset: %+v", s)
	}
}

func TestCommand_ProfileWithoutData(t *testing.T) {
	bot, api, _ := setupBot(t, nil)
	bot.handleUpdate(context.Background(), textUpdate("/profile"))

	if got := api.last(t); !strings.Contains(got, "No profile saved yet") {
		t.Errorf("reply = %q", got)
	}
}

func TestCommand_MealPlanUsesDefaults(t *testing.T) {
	bot, api, _ := setupBot(t, nil)
	bot.handleUpdate(context.Background(), textUpdate("/mealplan"))

	got := api.last(t)
	if !strings.Contains(got, "Daily target: 2000 kcal") || !strings.Contains(got, "Day 1 to Day 7") {
		t.Errorf("reply = %q", got)
	}
}

func TestCommand_CancelStopsWizard(t *testing.T) {
	bot, _, store := setupBot(t, nil)
	ctx := context.Background()

	bot.handleUpdate(ctx, textUpdate("/start"))
	bot.handleUpdate(ctx, textUpdate("/cancel"))
	if _, inProgress := bot.userStates[userID]; inProgress {
		t.Fatal("wizard still in progress")
	}

	if p, _ := store.Get(ctx); p != nil {
		t.Errorf("cancel saved a profile: %+v", p)
	}
}

func TestChat_FallbackReply(t *testing.T) {
	bot, api, _ := setupBot(t, nil)
	bot.handleUpdate(context.Background(), textUpdate("What should I eat?"))

	if got := api.last(t); got != ai.FallbackReply {
		t.Errorf("reply = %q", got)
	}
}

func TestChat_ProviderError(t *testing.T) {
	bot, api, _ := setupBot(t, failingChat{})
	bot.handleUpdate(context.Background(), textUpdate("hello"))

	if got := api.last(t); got != "⚠️ AI service unavailable. Error: quota exceeded" {
		t.Errorf("reply = %q", got)
	}
}

func photoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func photoUpdate() tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 60},
			{FileID: "large", Width: 800, Height: 600},
		},
	}}
}

func TestPhoto_MockAnalysis(t *testing.T) {
	bot, api, _ := setupBot(t, nil)
	api.fileURL = photoServer(t).URL + "/file/photos/file_1.png"

	bot.handleUpdate(context.Background(), photoUpdate())

	got := api.last(t)
	for _, want := range []string{"rice ~150 g", "Estimate: 550 kcal", "Mock estimate only"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q:\n%s", want, got)
		}
	}
}

func TestPhoto_ProviderErrorFallsBackToMock(t *testing.T) {
	bot, api, _ := setupBot(t, failingChat{})
	api.fileURL = photoServer(t).URL + "/file/photos/file_1.png"

	bot.handleUpdate(context.Background(), photoUpdate())

	if got := api.last(t); !strings.Contains(got, "chicken ~100 g") {
		t.Errorf("reply = %q", got)
	}
}

func TestPhoto_DownloadFailure(t *testing.T) {
	bot, api, _ := setupBot(t, nil)
	api.fileErr = errors.New("file is too big")

	bot.handleUpdate(context.Background(), photoUpdate())

	if got := api.last(t); !strings.Contains(got, "couldn't fetch") {
		t.Errorf("reply = %q", got)
	}
}

func TestPhoto_DownloadErrorHidesToken(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	api := &fakeAPI{}
	bot := newTelegramBot(api, db.NewMemoryStore(), ai.NewMock(), time.Second,
		&logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	srv := httptest.NewServer(http.NotFoundHandler())
	api.fileURL = srv.URL + "/file/bot123456:SECRET-TOKEN/photos/file_1.png"
	srv.Close()

	bot.handleUpdate(context.Background(), photoUpdate())

	if got := api.last(t); !strings.Contains(got, "couldn't fetch") {
		t.Errorf("reply = %q", got)
	}
	failures := logs.FilterMessage("Failed to download photo").All()
	if len(failures) != 1 {
		t.Fatalf("download failures logged = %d, want 1", len(failures))
	}
	for _, entry := range logs.All() {
		if fields := fmt.Sprint(entry.ContextMap()); strings.Contains(fields, "SECRET-TOKEN") {
			t.Errorf("log entry %q leaks the token: %s", entry.Message, fields)
		}
	}
}

func TestWithoutURL(t *testing.T) {
	inner := errors.New("connection refused")
	err := withoutURL(&url.Error{Op: "Get", URL: "https://api.telegram.org/file/botSECRET/x.jpg", Err: inner})
	if strings.Contains(err.Error(), "SECRET") {
		t.Errorf("err = %q", err)
	}
	if !errors.Is(err, inner) {
		t.Errorf("inner error lost: %v", err)
	}

	plain := errors.New("status 500")
	if withoutURL(plain) != plain {
		t.Error("non-URL errors should pass through")
	}
}

func TestFormatMealPlan(t *testing.T) {
	plan := nutrition.GeneratePlan(&models.Profile{DietaryPref: models.String("vegan")})
	got := formatMealPlan(plan)

	for _, want := range []string{"7-day meal plan (vegan)", "Tofu stir fry + Vegetables", "• Nuts (almonds, peanuts)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatAnalysis_FreeText(t *testing.T) {
	got := formatAnalysis(&ai.Analysis{AIAnalysis: "Looks like a salad, about 300 kcal."})
	if !strings.HasSuffix(got, "Looks like a salad, about 300 kcal.") {
		t.Errorf("got %q", got)
	}
}

func TestFormatProfile(t *testing.T) {
	p := &models.Profile{
		Age:      models.Int(28),
		HeightCM: models.Float(162.5),
		Goals:    models.String("run a 10k"),
	}
	want := "Age: 28\nHeight: 162.5 cm\nGoals: run a 10k"
	if got := formatProfile(p); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
