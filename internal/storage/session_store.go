package storage

import (
	"context"
	"fmt"

	"github.com/ad/gitelegram-greeter-bot/internal/config"
	"github.com/ad/gitelegram-greeter-bot/internal/domain"
	"github.com/ad/gitelegram-greeter-bot/internal/logger"
)

var (
	_ domain.SessionStore = (*MemorySessionStore)(nil)
	_ domain.SessionStore = (*SQLiteSessionStore)(nil)
	_ domain.SessionStore = (*RedisSessionStore)(nil)
)

// NewSessionStore opens the backend selected by cfg.SessionBackend
func NewSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory, "":
		return NewMemorySessionStore(), nil
	case config.SessionBackendSQLite:
		return OpenSQLiteSessionStore(cfg.DatabasePath, log)
	case config.SessionBackendRedis:
		return NewRedisSessionStore(ctx, cfg.RedisURL, log)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
