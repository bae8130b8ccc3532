package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/gitelegram-greeter-bot/internal/bot"
	"github.com/ad/gitelegram-greeter-bot/internal/config"
	"github.com/ad/gitelegram-greeter-bot/internal/domain"
	"github.com/ad/gitelegram-greeter-bot/internal/locale"
	"github.com/ad/gitelegram-greeter-bot/internal/logger"
	"github.com/ad/gitelegram-greeter-bot/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	log.Info("Starting greeter bot",
		"log_level", cfg.LogLevel,
		"run_mode", cfg.RunMode,
		"session_backend", cfg.SessionBackend,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("Bot stopped successfully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	catalog, err := locale.LoadCatalog(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("failed to load locales: %w", err)
	}
	for _, w := range catalog.Validation().Warnings() {
		log.Warn("locale catalog warning", "type", w.Type, "key", w.Key, "locale", w.Locale)
	}
	log.Info("Locale catalog loaded", "locales", catalog.Locales(), "default", catalog.DefaultLocale())

	admins, err := domain.ParseAdminRegistry(cfg.AdminUserIDs)
	if err != nil {
		log.Warn("Ignoring malformed ADMIN_USER_IDS, no admins configured", "error", err)
	}
	log.Info("Admin registry created", "admins", admins.Len())

	sessions, err := storage.NewSessionStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error("Failed to close session store", "error", err)
		}
	}()
	log.Info("Session store opened", "backend", cfg.SessionBackend)

	selector := domain.NewLanguageSelector(sessions, catalog, log)
	locks := bot.NewConversationLocks()

	var handler *bot.Handler

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if handler != nil {
				handler.HandleDefault(ctx, b, update)
			}
		}),
		tgbot.WithMiddlewares(locks.Middleware),
		tgbot.WithCheckInitTimeout(10 * time.Second),
	}
	if cfg.WebhookSecret != "" {
		opts = append(opts, tgbot.WithWebhookSecretToken(cfg.WebhookSecret))
	}

	b, err := tgbot.New(cfg.TelegramToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	log.Info("Telegram bot created")

	handler = bot.NewHandler(b, catalog, selector, admins, cfg, log)

	if me, err := b.GetMe(ctx); err != nil {
		log.Warn("Failed to get bot info", "error", err)
	} else {
		handler.SetBotUsername(me.Username)
		log.Info("Bot info retrieved", "username", me.Username)
	}

	handler.Register(b)
	log.Info("Command handlers registered")

	if err := handler.RegisterCommands(ctx); err != nil {
		log.Warn("Command menu is incomplete", "error", err)
	}

	if cfg.IsWebhook() {
		return runWebhook(ctx, b, cfg, log)
	}
	return runPolling(ctx, b, log)
}

func runPolling(ctx context.Context, b *tgbot.Bot, log *logger.Logger) error {
	// Polling fails while a webhook is set
	if _, err := b.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
		log.Warn("Failed to delete webhook", "error", err)
	}

	log.Info("Starting bot polling. Press Ctrl+C to stop.")
	b.Start(ctx)

	log.Info("Shutdown signal received, stopping bot...")
	return nil
}
