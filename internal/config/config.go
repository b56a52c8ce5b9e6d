package config

import (
	"fmt"
	"path/filepath"
	"time"
	// Zone names resolve in minimal images without a zoneinfo database.
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the configuration for the application.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	Port     string `envconfig:"PORT" default:"8080"`
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	// Storage
	StoreDriver  string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/diet.db"`
	PostgresDSN  string `envconfig:"PG_DSN"`
	RedisAddr    string `envconfig:"REDIS_ADDR"`

	// Text generation
	LLMProvider          string `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY"`
	GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GroqAPIKey           string `envconfig:"GROQ_API_KEY"`
	GroqModel            string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	LLMRequestsPerMinute int    `envconfig:"LLM_REQUESTS_PER_MINUTE" default:"15"`

	// Plan confirmation
	ConfirmationSecret string        `envconfig:"CONFIRMATION_SECRET"`
	PendingPlanTTL     time.Duration `envconfig:"PENDING_PLAN_TTL" default:"24h"`

	// Telegram Config (optional for CLI and API)
	TelegramBotToken       string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL     string  `envconfig:"TELEGRAM_WEBHOOK_URL"`
	TelegramAllowedUserIDs []int64 `envconfig:"TELEGRAM_ALLOWED_USER_IDS"`
	AdminTelegramID        int64   `envconfig:"ADMIN_TELEGRAM_ID"`

	MetricsRetentionDays int `envconfig:"METRICS_RETENTION_DAYS" default:"30"`
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	switch cfg.LLMProvider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("PG_DSN environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if cfg.ConfirmationSecret == "" {
		return nil, fmt.Errorf("CONFIRMATION_SECRET environment variable not set")
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramWebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}

	return &cfg, nil
}

// Location resolves the configured timezone used to decide what "today" is.
// NewFromEnv has already validated it; UTC covers hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DataDir is the directory holding the local database.
func (c *Config) DataDir() string {
	return filepath.Dir(c.DatabasePath)
}
