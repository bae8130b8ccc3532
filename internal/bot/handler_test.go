package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ad/gitelegram-greeter-bot/internal/config"
	"github.com/ad/gitelegram-greeter-bot/internal/domain"
	"github.com/ad/gitelegram-greeter-bot/internal/locale"
	"github.com/ad/gitelegram-greeter-bot/internal/logger"
	"github.com/ad/gitelegram-greeter-bot/internal/storage"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// mockBot records every API call
type mockBot struct {
	mu              sync.Mutex
	sentMessages    []*bot.SendMessageParams
	callbackAnswers []*bot.AnswerCallbackQueryParams
	inlineAnswers   []*bot.AnswerInlineQueryParams
	commandSets     []*bot.SetMyCommandsParams
	sendErr         error
	commandsErr     error
}

func (m *mockBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentMessages = append(m.sentMessages, params)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &models.Message{ID: len(m.sentMessages)}, nil
}

func (m *mockBot) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbackAnswers = append(m.callbackAnswers, params)
	return true, nil
}

func (m *mockBot) AnswerInlineQuery(ctx context.Context, params *bot.AnswerInlineQueryParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inlineAnswers = append(m.inlineAnswers, params)
	return true, nil
}

func (m *mockBot) SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandSets = append(m.commandSets, params)
	if m.commandsErr != nil && params.LanguageCode != "" {
		return false, m.commandsErr
	}
	return true, nil
}

func (m *mockBot) lastMessage(t *testing.T) *bot.SendMessageParams {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sentMessages) == 0 {
		t.Fatal("Expected a message to be sent")
	}
	return m.sentMessages[len(m.sentMessages)-1]
}

func (m *mockBot) lastCallbackAnswer(t *testing.T) *bot.AnswerCallbackQueryParams {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callbackAnswers) == 0 {
		t.Fatal("Expected the callback query to be answered")
	}
	return m.callbackAnswers[len(m.callbackAnswers)-1]
}

type testEnv struct {
	handler *Handler
	api     *mockBot
	catalog *locale.Catalog
	store   *storage.MemorySessionStore
}

func newTestEnv(t *testing.T, adminIDs ...int64) *testEnv {
	t.Helper()

	catalog, err := locale.LoadCatalog(locale.En)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	log := logger.New(logger.ERROR)
	store := storage.NewMemorySessionStore()
	selector := domain.NewLanguageSelector(store, catalog, log)
	api := &mockBot{}
	cfg := &config.Config{JoinURL: "https://t.me/+example"}

	return &testEnv{
		handler: NewHandler(api, catalog, selector, domain.NewAdminRegistry(adminIDs...), cfg, log),
		api:     api,
		catalog: catalog,
		store:   store,
	}
}

func commandUpdate(chatID int64, from *models.User, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: chatID},
			From: from,
			Text: text,
		},
	}
}

func callbackUpdate(chatID int64, userID int64, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{Chat: models.Chat{ID: chatID}},
			},
		},
	}
}

// An admin gets a greeting distinct from a regular user's
func TestHandleYoAdminGreeting(t *testing.T) {
	env := newTestEnv(t, 42)
	ctx := context.Background()

	env.handler.HandleYo(ctx, nil, commandUpdate(42, &models.User{ID: 42, Username: "boss"}, "/yo"))
	admin := env.api.lastMessage(t).Text

	env.handler.HandleYo(ctx, nil, commandUpdate(7, &models.User{ID: 7, Username: "boss"}, "/yo"))
	regular := env.api.lastMessage(t).Text

	if admin == regular {
		t.Errorf("Expected distinct admin greeting, both were %q", admin)
	}
	if admin != "Yo, boss boss!" {
		t.Errorf("Unexpected admin greeting %q", admin)
	}
	if regular != "Yo boss" {
		t.Errorf("Unexpected regular greeting %q", regular)
	}
}

func TestProperty_AdminGreetingOnlyForAdmins(t *testing.T) {
	env := newTestEnv(t, 42, 1001)
	ctx := context.Background()
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	adminGreeting := env.catalog.Render(locale.Yo, locale.En, map[string]interface{}{"Name": "u", "Admin": true})
	regularGreeting := env.catalog.Render(locale.Yo, locale.En, map[string]interface{}{"Name": "u", "Admin": false})

	properties.Property("greeting branches on admin membership", prop.ForAll(
		func(userID int64) bool {
			env.handler.HandleYo(ctx, nil, commandUpdate(userID, &models.User{ID: userID, Username: "u"}, "/yo"))
			text := env.api.lastMessage(t).Text

			if userID == 42 || userID == 1001 {
				return text == adminGreeting
			}
			return text == regularGreeting
		},
		gen.OneGenOf(gen.OneConstOf(int64(42), int64(1001)), gen.Int64()),
	))

	properties.TestingRun(t)
}

func TestDisplayName(t *testing.T) {
	testCases := []struct {
		name     string
		user     *models.User
		expected string
	}{
		{"username", &models.User{ID: 1, Username: "alice", FirstName: "Alice"}, "alice"},
		{"full name", &models.User{ID: 2, FirstName: "Bob", LastName: "Smith"}, "Bob Smith"},
		{"first name", &models.User{ID: 3, FirstName: "Carol"}, "Carol"},
		{"id fallback", &models.User{ID: 4}, "id4"},
		{"no sender", nil, "id0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := displayName(tc.user); got != tc.expected {
				t.Errorf("displayName() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestHandleStartAndHelp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.HandleStart(ctx, nil, commandUpdate(10, &models.User{ID: 10}, "/start"))
	if got := env.api.lastMessage(t); got.Text != env.catalog.Render(locale.Start, locale.En, nil) || got.ChatID != int64(10) {
		t.Errorf("Unexpected start reply: %+v", got)
	}

	env.handler.HandleHelp(ctx, nil, commandUpdate(10, &models.User{ID: 10}, "/help"))
	if got := env.api.lastMessage(t).Text; got != env.catalog.Render(locale.Help, locale.En, nil) {
		t.Errorf("Unexpected help reply: %q", got)
	}
}

// The language menu offers exactly the supported locales in fixed order
func TestHandleLanguageMenu(t *testing.T) {
	env := newTestEnv(t)

	env.handler.HandleLanguage(context.Background(), nil, commandUpdate(5, &models.User{ID: 5}, "/language"))

	msg := env.api.lastMessage(t)
	if msg.Text != env.catalog.Render(locale.LanguagePrompt, locale.En, nil) {
		t.Errorf("Unexpected prompt %q", msg.Text)
	}

	keyboard, ok := msg.ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("Expected inline keyboard, got %T", msg.ReplyMarkup)
	}

	var buttons []models.InlineKeyboardButton
	for _, row := range keyboard.InlineKeyboard {
		buttons = append(buttons, row...)
	}

	expected := []struct{ text, data string }{
		{"English", "lang:en"},
		{"Русский", "lang:ru"},
	}
	if len(buttons) != len(expected) {
		t.Fatalf("Expected %d buttons, got %d", len(expected), len(buttons))
	}
	for i, want := range expected {
		if buttons[i].Text != want.text || buttons[i].CallbackData != want.data {
			t.Errorf("Button %d = (%q, %q), expected (%q, %q)", i, buttons[i].Text, buttons[i].CallbackData, want.text, want.data)
		}
	}
}

// Choosing Russian acknowledges and greets in Russian
func TestHandleLanguageChoiceRussian(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.HandleLanguageChoice(ctx, nil, callbackUpdate(77, 77, "lang:ru"))

	answer := env.api.lastCallbackAnswer(t)
	if answer.CallbackQueryID != "cb-1" {
		t.Errorf("Expected callback cb-1 to be answered, got %q", answer.CallbackQueryID)
	}
	if answer.Text != env.catalog.Render(locale.LanguageChanged, locale.Ru, nil) {
		t.Errorf("Expected Russian toast, got %q", answer.Text)
	}

	greeting := env.api.lastMessage(t)
	if greeting.ChatID != int64(77) || greeting.Text != env.catalog.Render(locale.Start, locale.Ru, nil) {
		t.Errorf("Expected Russian greeting in chat 77, got %+v", greeting)
	}

	session, err := env.store.Get(ctx, 77)
	if err != nil || session.Locale != locale.Ru {
		t.Errorf("Expected stored locale ru, got %+v (err %v)", session, err)
	}

	// Later replies in the same conversation use Russian
	env.handler.HandleHelp(ctx, nil, commandUpdate(77, &models.User{ID: 77}, "/help"))
	if got := env.api.lastMessage(t).Text; got != env.catalog.Render(locale.Help, locale.Ru, nil) {
		t.Errorf("Expected Russian help, got %q", got)
	}
}

func TestHandleLanguageChoiceUnsupported(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.HandleLanguageChoice(ctx, nil, callbackUpdate(3, 3, "lang:de"))

	answer := env.api.lastCallbackAnswer(t)
	if answer.Text != env.catalog.Render(locale.LanguageUnsupported, locale.En, nil) {
		t.Errorf("Expected unsupported toast, got %q", answer.Text)
	}
	if len(env.api.sentMessages) != 0 {
		t.Errorf("Expected no greeting, got %d messages", len(env.api.sentMessages))
	}
	if env.store.Len() != 0 {
		t.Errorf("Expected no session change, got %d sessions", env.store.Len())
	}
}

func TestProperty_LanguageChoiceRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("selecting a locale twice is the same as once and only affects its conversation", prop.ForAll(
		func(chatID int64, other int64, code string) bool {
			if chatID == other {
				return true
			}

			before, _ := env.store.Get(ctx, other)

			env.handler.HandleLanguageChoice(ctx, nil, callbackUpdate(chatID, chatID, "lang:"+code))
			first, _ := env.store.Get(ctx, chatID)
			env.handler.HandleLanguageChoice(ctx, nil, callbackUpdate(chatID, chatID, "lang:"+code))
			second, _ := env.store.Get(ctx, chatID)

			after, _ := env.store.Get(ctx, other)

			return first.Locale == code && second.Locale == code && before.Locale == after.Locale
		},
		gen.Int64(),
		gen.Int64(),
		gen.OneConstOf(locale.En, locale.Ru),
	))

	properties.TestingRun(t)
}

func TestUnsetConversationUsesDefaultLocale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.HandleLanguageChoice(ctx, nil, callbackUpdate(1, 1, "lang:ru"))
	env.handler.HandleStart(ctx, nil, commandUpdate(2, &models.User{ID: 2}, "/start"))

	if got := env.api.lastMessage(t).Text; got != env.catalog.Render(locale.Start, locale.En, nil) {
		t.Errorf("Expected default locale for an untouched conversation, got %q", got)
	}
}

// Inline queries get an empty result list
func TestHandleInlineQueryEmptyResults(t *testing.T) {
	env := newTestEnv(t)
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("any inline query is answered with no results", prop.ForAll(
		func(query string) bool {
			env.handler.HandleDefault(context.Background(), nil, &models.Update{
				InlineQuery: &models.InlineQuery{ID: "iq", From: &models.User{ID: 9}, Query: query},
			})

			env.api.mu.Lock()
			defer env.api.mu.Unlock()
			last := env.api.inlineAnswers[len(env.api.inlineAnswers)-1]
			return last.InlineQueryID == "iq" && last.Results != nil && len(last.Results) == 0
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)

	if len(env.api.sentMessages) != 0 {
		t.Errorf("Expected no messages for inline queries, got %d", len(env.api.sentMessages))
	}
}

func TestHandleMessageIntro(t *testing.T) {
	env := newTestEnv(t)

	env.handler.HandleDefault(context.Background(), nil, commandUpdate(8, &models.User{ID: 8}, "hello there"))

	msg := env.api.lastMessage(t)
	if msg.ParseMode != models.ParseModeHTML {
		t.Errorf("Expected HTML parse mode, got %q", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "<b>") {
		t.Errorf("Expected HTML markup in intro, got %q", msg.Text)
	}

	keyboard, ok := msg.ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok || len(keyboard.InlineKeyboard) != 1 || len(keyboard.InlineKeyboard[0]) != 1 {
		t.Fatalf("Expected a single join button, got %+v", msg.ReplyMarkup)
	}
	button := keyboard.InlineKeyboard[0][0]
	if button.Text != "join" || button.URL != "https://t.me/+example" {
		t.Errorf("Unexpected join button %+v", button)
	}
}

func TestHandleUnknownCallback(t *testing.T) {
	env := newTestEnv(t)

	env.handler.HandleDefault(context.Background(), nil, callbackUpdate(4, 4, "stale:button"))

	answer := env.api.lastCallbackAnswer(t)
	if answer.Text != env.catalog.Render(locale.UnknownAction, locale.En, nil) {
		t.Errorf("Expected unknown action toast, got %q", answer.Text)
	}
	if len(env.api.sentMessages) != 0 {
		t.Errorf("Expected no messages, got %d", len(env.api.sentMessages))
	}
}

func TestHandleDefaultIgnoresOtherUpdates(t *testing.T) {
	env := newTestEnv(t)

	env.handler.HandleDefault(context.Background(), nil, &models.Update{ID: 1})

	if len(env.api.sentMessages)+len(env.api.callbackAnswers)+len(env.api.inlineAnswers) != 0 {
		t.Error("Expected no API calls for an empty update")
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t)
	env.api.sendErr = errors.New("Forbidden: bot was blocked by the user")

	env.handler.HandleStart(context.Background(), nil, commandUpdate(1, &models.User{ID: 1}, "/start"))

	if len(env.api.sentMessages) != 1 {
		t.Errorf("Expected exactly one attempt, got %d", len(env.api.sentMessages))
	}
}

func TestCallbackFromInaccessibleMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	update := &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-2",
			From: models.User{ID: 5},
			Data: "lang:ru",
			Message: models.MaybeInaccessibleMessage{
				InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: -100}},
			},
		},
	}
	env.handler.HandleLanguageChoice(ctx, nil, update)

	session, _ := env.store.Get(ctx, -100)
	if session.Locale != locale.Ru {
		t.Errorf("Expected locale stored for chat -100, got %q", session.Locale)
	}
}
