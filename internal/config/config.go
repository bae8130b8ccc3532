package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Run modes
const (
	RunModePolling = "polling"
	RunModeWebhook = "webhook"
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN" env-required:"true" env-description:"Telegram bot token"`

	// AdminUserIDs is kept raw; domain.ParseAdminRegistry decides what it means.
	AdminUserIDs string `env:"ADMIN_USER_IDS" env-default:"[]" env-description:"JSON array of admin user ids"`

	AppEnv        string `env:"APP_ENV" env-default:"development"`
	RunMode       string `env:"RUN_MODE" env-description:"polling or webhook"`
	Port          int    `env:"PORT" env-default:"3000"`
	WebhookURL    string `env:"WEBHOOK_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	DefaultLocale string `env:"DEFAULT_LOCALE" env-default:"en"`
	JoinURL       string `env:"JOIN_URL" env-default:"https://t.me/+A7jKi9dbLTMzNDUy"`

	SessionBackend string `env:"SESSION_BACKEND" env-default:"memory"`
	DatabasePath   string `env:"DATABASE_PATH" env-default:"./data/bot.db"`
	RedisURL       string `env:"REDIS_URL"`

	LogLevel string `env:"LOG_LEVEL" env-default:"INFO"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	cfg.RunMode = strings.ToLower(strings.TrimSpace(cfg.RunMode))
	if cfg.RunMode == "" {
		cfg.RunMode = RunModePolling
		if strings.EqualFold(cfg.AppEnv, "production") {
			cfg.RunMode = RunModeWebhook
		}
	}
	if cfg.RunMode != RunModePolling && cfg.RunMode != RunModeWebhook {
		return nil, fmt.Errorf("invalid RUN_MODE '%s': must be %s or %s", cfg.RunMode, RunModePolling, RunModeWebhook)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT '%d': must be between 1 and 65535", cfg.Port)
	}

	cfg.DefaultLocale = strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	if cfg.DefaultLocale == "" {
		return nil, fmt.Errorf("DEFAULT_LOCALE must not be empty")
	}

	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	switch cfg.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendSQLite:
		if strings.TrimSpace(cfg.DatabasePath) == "" {
			return nil, fmt.Errorf("DATABASE_PATH is required for the sqlite session backend")
		}
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis session backend")
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND '%s'", cfg.SessionBackend)
	}

	return &cfg, nil
}

// IsWebhook reports whether updates are received through a webhook
func (c *Config) IsWebhook() bool {
	return c.RunMode == RunModeWebhook
}

// ListenAddr is the address the webhook server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
