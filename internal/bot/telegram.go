package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitplan/internal/ai"
	"fitplan/internal/db"
	"fitplan/internal/models"
	"fitplan/internal/nutrition"
	"fitplan/pkg/logger"
)

// botAPI is the subset of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type TelegramBot struct {
	bot        botAPI
	profiles   db.ProfileRepository
	ai         ai.Client
	logger     *logger.Logger
	httpClient *http.Client
	userStates map[int64]*userState
	stateMutex sync.RWMutex
	aiTimeout  time.Duration
}

func NewTelegramBot(token string, profiles db.ProfileRepository, aiClient ai.Client, aiTimeout time.Duration, logger *logger.Logger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", withoutURL(err))
	}

	logger.Infow("Authorized on Telegram", "username", api.Self.UserName)

	return newTelegramBot(api, profiles, aiClient, aiTimeout, logger), nil
}

func newTelegramBot(api botAPI, profiles db.ProfileRepository, aiClient ai.Client, aiTimeout time.Duration, logger *logger.Logger) *TelegramBot {
	if aiTimeout <= 0 {
		aiTimeout = 30 * time.Second
	}
	return &TelegramBot{
		bot:        api,
		profiles:   profiles,
		ai:         aiClient,
		logger:     logger.With("component", "telegram"),
		httpClient: &http.Client{Timeout: aiTimeout},
		userStates: make(map[int64]*userState),
		aiTimeout:  aiTimeout,
	}
}

// Start begins receiving updates from Telegram via polling
func (t *TelegramBot) Start(ctx context.Context) error {
	// Polling and webhooks are mutually exclusive on Telegram's side.
	t.logger.Infow("Removing any existing webhook")
	if _, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", withoutURL(err))
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := t.bot.GetUpdatesChan(updateConfig)
	t.logger.Infow("Started receiving Telegram updates")

	go t.handleUpdates(ctx, updates)
	return nil
}

func (t *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		go func(update tgbotapi.Update) {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Errorw("Recovered from panic while processing update", "error", r)
				}
			}()
			t.handleUpdate(ctx, update)
		}(update)
	}
}

func (t *TelegramBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil || message.Chat == nil {
			return
		}
		t.logger.Infow("Received message",
			"update_id", update.UpdateID,
			"chat_id", message.Chat.ID,
			"from", message.From.UserName)

		switch {
		case message.IsCommand():
			t.handleCommand(ctx, message)
		case len(message.Photo) > 0:
			t.handlePhoto(ctx, message)
		default:
			t.handleMessage(ctx, message)
		}
	case update.CallbackQuery != nil:
		// Acknowledge so the client stops showing a spinner.
		if _, err := t.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			t.logger.Warnw("Failed to answer callback query", "error", withoutURL(err))
		}
	}
}

// handleCommand processes bot commands
func (t *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	t.logger.Infow("Handling command", "command", message.Command(), "user_id", userID)

	switch message.Command() {
	case "start":
		t.setState(userID, &userState{CurrentState: StateGender})
		t.sendWithKeyboard(chatID, "👋 Hi! I'll set up your profile and build a weekly meal plan. First, your gender:", genderOptions)

	case "mealplan":
		p := t.loadProfile(ctx)
		t.send(chatID, formatMealPlan(nutrition.GeneratePlan(p)))

	case "profile":
		p := t.loadProfile(ctx)
		if p == nil {
			t.send(chatID, "No profile saved yet. Use /start to create one.")
			return
		}
		t.send(chatID, formatProfile(p))

	case "cancel":
		t.clearState(userID)
		t.sendRemoveKeyboard(chatID, "Cancelled. Your saved profile was not changed.")

	case "help":
		t.send(chatID, helpText)

	default:
		t.send(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

// handleMessage runs the profile wizard when one is in progress, and otherwise
// forwards the text to the AI assistant.
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	t.stateMutex.Lock()
	state, exists := t.userStates[userID]
	var step stepResult
	if exists {
		step = state.advance(message.Text)
		if step.done {
			delete(t.userStates, userID)
		}
	}
	t.stateMutex.Unlock()

	if !exists {
		t.chat(ctx, chatID, message.Text)
		return
	}

	if !step.done {
		if step.options != nil {
			t.sendWithKeyboard(chatID, step.reply, step.options)
		} else {
			t.sendRemoveKeyboard(chatID, step.reply)
		}
		return
	}

	profile := step.profile
	if err := t.profiles.Replace(ctx, profile); err != nil {
		t.logger.Errorw("Failed to save profile", "error", err, "user_id", userID)
		t.sendRemoveKeyboard(chatID, "Sorry, I couldn't save your profile. Please try /start again later.")
		return
	}
	t.logger.Infow("Profile saved from Telegram", "user_id", userID, "profile_id", profile.ID)

	t.sendRemoveKeyboard(chatID, "✅ Profile saved!")
	t.send(chatID, formatMealPlan(nutrition.GeneratePlan(profile)))
}

func (t *TelegramBot) chat(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}

	var profile *models.Profile
	if t.ai.Configured() {
		profile = t.loadProfile(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, t.aiTimeout)
	defer cancel()

	reply, err := t.ai.Chat(ctx, text, profile)
	if err != nil {
		t.logger.Errorw("AI chat failed", "error", err, "chat_id", chatID)
		reply = ai.UnavailableReply(err)
	}
	t.send(chatID, reply)
}

// loadProfile returns the stored profile, or nil when none exists or the store
// fails.
func (t *TelegramBot) loadProfile(ctx context.Context) *models.Profile {
	p, err := t.profiles.Get(ctx)
	if err != nil {
		t.logger.Warnw("Failed to load profile", "error", err)
		return nil
	}
	return p
}

func (t *TelegramBot) setState(userID int64, s *userState) {
	t.stateMutex.Lock()
	t.userStates[userID] = s
	t.stateMutex.Unlock()
}

func (t *TelegramBot) clearState(userID int64) {
	t.stateMutex.Lock()
	delete(t.userStates, userID)
	t.stateMutex.Unlock()
}

func (t *TelegramBot) send(chatID int64, text string) {
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		t.logger.Errorw("Failed to send message", "error", withoutURL(err), "chat_id", chatID)
	}
}

func (t *TelegramBot) sendWithKeyboard(chatID int64, text string, options [][]string) {
	msg := tgbotapi.NewMessage(chatID, text)
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, row := range options {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Errorw("Failed to send message", "error", withoutURL(err), "chat_id", chatID)
	}
}

func (t *TelegramBot) sendRemoveKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Errorw("Failed to send message", "error", withoutURL(err), "chat_id", chatID)
	}
}

// Stop gracefully shuts down the bot
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.bot.StopReceivingUpdates()

	// Allow time for handlers to complete
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

const helpText = `I can help with your nutrition plan.

/start - set up or replace your profile
/mealplan - your 7-day meal plan
/profile - show the saved profile
/cancel - stop the profile setup
/help - this message

Send me a food photo for a nutrition estimate, or just ask a question.`
