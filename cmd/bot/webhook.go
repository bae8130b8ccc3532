package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ad/gitelegram-greeter-bot/internal/config"
	"github.com/ad/gitelegram-greeter-bot/internal/logger"

	tgbot "github.com/go-telegram/bot"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// runWebhook serves Telegram updates on cfg.Port until ctx is done
func runWebhook(ctx context.Context, b *tgbot.Bot, cfg *config.Config, log *logger.Logger) error {
	if cfg.WebhookURL != "" {
		if _, err := b.SetWebhook(ctx, &tgbot.SetWebhookParams{
			URL:         cfg.WebhookURL,
			SecretToken: cfg.WebhookSecret,
		}); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		log.Info("Webhook registered", "url", cfg.WebhookURL)
	} else {
		log.Warn("WEBHOOK_URL is not set, expecting the webhook to be registered already")
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           b.WebhookHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go b.StartWebhook(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Webhook server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("webhook server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, stopping webhook server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown webhook server: %w", err)
	}
	return nil
}
