package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ad/gitelegram-greeter-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Command names without the leading slash
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandYo       = "yo"
	CommandLanguage = "language"
)

// menuCommands is the command menu in display order with its description keys
var menuCommands = []struct {
	command string
	key     string
}{
	{CommandStart, locale.CommandStartDescription},
	{CommandHelp, locale.CommandHelpDescription},
	{CommandYo, locale.CommandYoDescription},
	{CommandLanguage, locale.CommandLanguageDescription},
}

// parseCommand extracts the command name and the bot it is addressed to from
// message text: "/Start@my_bot arg" -> ("start", "my_bot").
func parseCommand(text string) (name, mention string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", "", false
	}

	name = strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name, mention = name[:i], name[i+1:]
	}
	if name == "" {
		return "", "", false
	}

	return strings.ToLower(name), mention, true
}

// matchCommand returns a match func for messages carrying the command
func (h *Handler) matchCommand(command string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}

		name, mention, ok := parseCommand(update.Message.Text)
		if !ok || name != command {
			return false
		}

		return mention == "" || h.botUsername == "" || strings.EqualFold(mention, h.botUsername)
	}
}

// Register attaches the command and callback handlers to b.
// Inline queries and plain messages reach HandleDefault, which b must be
// created with.
func (h *Handler) Register(b *bot.Bot) {
	b.RegisterHandlerMatchFunc(h.matchCommand(CommandStart), h.HandleStart)
	b.RegisterHandlerMatchFunc(h.matchCommand(CommandHelp), h.HandleHelp)
	b.RegisterHandlerMatchFunc(h.matchCommand(CommandYo), h.HandleYo)
	b.RegisterHandlerMatchFunc(h.matchCommand(CommandLanguage), h.HandleLanguage)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, languageCallbackPrefix, bot.MatchTypePrefix, h.HandleLanguageChoice)
}

// localizedCommands renders the command menu in code
func (h *Handler) localizedCommands(code string) []models.BotCommand {
	commands := make([]models.BotCommand, 0, len(menuCommands))
	for _, c := range menuCommands {
		commands = append(commands, models.BotCommand{
			Command:     c.command,
			Description: h.catalog.Render(c.key, code, nil),
		})
	}
	return commands
}

// RegisterCommands publishes the command menu: once without a language code
// in the default locale, then once per other supported locale.
func (h *Handler) RegisterCommands(ctx context.Context) error {
	defaultLocale := h.catalog.DefaultLocale()

	var errs []error
	for _, code := range h.catalog.Locales() {
		params := &bot.SetMyCommandsParams{
			Commands: h.localizedCommands(code),
		}
		if code != defaultLocale {
			params.LanguageCode = code
		}

		if _, err := h.api.SetMyCommands(ctx, params); err != nil {
			h.logger.Error("failed to set bot commands", "locale", code, "error", err)
			errs = append(errs, fmt.Errorf("set commands for %s: %w", code, err))
			continue
		}
		h.logger.Info("bot commands registered", "locale", code, "count", len(params.Commands))
	}

	return errors.Join(errs...)
}
