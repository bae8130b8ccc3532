package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ad/gitelegram-greeter-bot/internal/config"
	"github.com/ad/gitelegram-greeter-bot/internal/domain"
	"github.com/ad/gitelegram-greeter-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// languageCallbackPrefix marks language menu buttons: "lang:<code>"
const languageCallbackPrefix = "lang:"

// Handler handles all Telegram bot interactions
type Handler struct {
	api         TelegramAPI
	catalog     *locale.Catalog
	selector    *domain.LanguageSelector
	admins      *domain.AdminRegistry
	config      *config.Config
	logger      domain.Logger
	botUsername string
}

// NewHandler creates a new Handler with all dependencies
func NewHandler(
	api TelegramAPI,
	catalog *locale.Catalog,
	selector *domain.LanguageSelector,
	admins *domain.AdminRegistry,
	cfg *config.Config,
	logger domain.Logger,
) *Handler {
	return &Handler{
		api:      api,
		catalog:  catalog,
		selector: selector,
		admins:   admins,
		config:   cfg,
		logger:   logger,
	}
}

// SetBotUsername makes commands addressed to another bot, e.g. /start@other_bot,
// be ignored. Without it every /cmd@name form matches.
func (h *Handler) SetBotUsername(username string) {
	h.botUsername = strings.TrimPrefix(username, "@")
}

// effectiveLocale resolves the conversation's locale. A store failure is
// logged and the default locale is used.
func (h *Handler) effectiveLocale(ctx context.Context, chatID int64) string {
	code, err := h.selector.EffectiveLocale(ctx, chatID)
	if err != nil {
		h.logger.Error("failed to resolve locale", "chat_id", chatID, "error", err)
	}
	return code
}

// send delivers a message. Failures are logged and not retried.
func (h *Handler) send(ctx context.Context, params *bot.SendMessageParams) {
	if _, err := h.api.SendMessage(ctx, params); err != nil {
		h.logger.Error("failed to send message", "chat_id", params.ChatID, "error", err)
	}
}

// answerCallback acknowledges a button press, optionally with a toast
func (h *Handler) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		h.logger.Error("failed to answer callback query", "callback_id", callbackID, "error", err)
	}
}

// replyTemplate renders key in the conversation's locale and sends it
func (h *Handler) replyTemplate(ctx context.Context, chatID int64, key string, data map[string]interface{}) {
	code := h.effectiveLocale(ctx, chatID)
	h.send(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   h.catalog.Render(key, code, data),
	})
}

// HandleStart handles the /start command
func (h *Handler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.replyTemplate(ctx, update.Message.Chat.ID, locale.Start, nil)
}

// HandleHelp handles the /help command
func (h *Handler) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.replyTemplate(ctx, update.Message.Chat.ID, locale.Help, nil)
}

// HandleYo greets the sender by name. Admins get a different greeting from
// the same template.
func (h *Handler) HandleYo(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	admin := msg.From != nil && h.admins.IsAdmin(userID)

	h.logger.Debug("greeting user", "chat_id", msg.Chat.ID, "user_id", userID, "admin", admin)

	h.replyTemplate(ctx, msg.Chat.ID, locale.Yo, map[string]interface{}{
		"Name":  displayName(msg.From),
		"Admin": admin,
	})
}

// displayName returns the username, else the full name, else id<N>
func displayName(user *models.User) string {
	if user == nil {
		return "id0"
	}
	if user.Username != "" {
		return user.Username
	}
	if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
		return name
	}
	return fmt.Sprintf("id%d", user.ID)
}

// HandleLanguage shows the language menu: one button per supported locale,
// labelled in that locale
func (h *Handler) HandleLanguage(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	code := h.effectiveLocale(ctx, chatID)

	h.send(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        h.catalog.Render(locale.LanguagePrompt, code, nil),
		ReplyMarkup: h.languageKeyboard(),
	})
}

func (h *Handler) languageKeyboard() *models.InlineKeyboardMarkup {
	choices := h.selector.Choices()
	row := make([]models.InlineKeyboardButton, 0, len(choices))
	for _, code := range choices {
		row = append(row, models.InlineKeyboardButton{
			Text:         h.catalog.Render(locale.LanguageName, code, nil),
			CallbackData: languageCallbackPrefix + code,
		})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{row},
	}
}

// HandleLanguageChoice stores the chosen locale, confirms with a toast in the
// new language and greets again in it
func (h *Handler) HandleLanguageChoice(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	chatID := callbackChatID(cb)
	code := strings.TrimPrefix(cb.Data, languageCallbackPrefix)

	if err := h.selector.Select(ctx, chatID, code); err != nil {
		current := h.effectiveLocale(ctx, chatID)
		if errors.Is(err, domain.ErrUnsupportedLocale) {
			h.answerCallback(ctx, cb.ID, h.catalog.Render(locale.LanguageUnsupported, current, nil))
			return
		}

		h.logger.Error("failed to select language", "chat_id", chatID, "locale", code, "error", err)
		h.answerCallback(ctx, cb.ID, "")
		return
	}

	h.answerCallback(ctx, cb.ID, h.catalog.Render(locale.LanguageChanged, code, nil))
	h.send(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   h.catalog.Render(locale.Start, code, nil),
	})
}

// HandleDefault receives every update no other handler matched
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.InlineQuery != nil:
		h.HandleInlineQuery(ctx, b, update)
	case update.CallbackQuery != nil:
		h.HandleUnknownCallback(ctx, b, update)
	case update.Message != nil:
		h.HandleMessage(ctx, b, update)
	default:
		h.logger.Debug("ignoring update", "update_id", update.ID)
	}
}

// HandleInlineQuery answers every inline query with an empty result list
func (h *Handler) HandleInlineQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.InlineQuery
	if _, err := h.api.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: query.ID,
		Results:       []models.InlineQueryResult{},
	}); err != nil {
		h.logger.Error("failed to answer inline query", "inline_query_id", query.ID, "error", err)
	}
}

// HandleUnknownCallback acknowledges buttons the bot no longer handles
func (h *Handler) HandleUnknownCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	chatID := callbackChatID(cb)

	h.logger.Warn("unknown callback", "chat_id", chatID, "data", cb.Data)
	h.answerCallback(ctx, cb.ID, h.catalog.Render(locale.UnknownAction, h.effectiveLocale(ctx, chatID), nil))
}

// HandleMessage replies to any other message with the intro and a join button
func (h *Handler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	code := h.effectiveLocale(ctx, chatID)

	h.send(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      h.catalog.Render(locale.Intro, code, nil),
		ParseMode: models.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: h.catalog.Render(locale.JoinButton, code, nil), URL: h.config.JoinURL}},
			},
		},
	})
}
