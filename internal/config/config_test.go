package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	base := func() {
		setEnv("LLM_PROVIDER", "gemini")
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("CONFIRMATION_SECRET", "s3cret")
		setEnv("STORE_DRIVER", "sqlite")
		setEnv("TELEGRAM_BOT_TOKEN", "")
		setEnv("TIMEZONE", "UTC")
	}

	t.Run("Success", func(t *testing.T) {
		base()
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "11,22")
		setEnv("PENDING_PLAN_TTL", "2h")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 22 {
			t.Errorf("Unexpected allowed user ids: %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.PendingPlanTTL != 2*time.Hour {
			t.Errorf("Expected PendingPlanTTL 2h, got %v", cfg.PendingPlanTTL)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		base()
		os.Unsetenv("DATABASE_PATH")
		os.Unsetenv("PORT")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/diet.db" {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default Port 8080, got '%s'", cfg.Port)
		}
	})

	missing := []struct {
		name    string
		prepare func()
		want    string
	}{
		{"MissingGeminiAPIKey", func() { os.Unsetenv("GEMINI_API_KEY") }, "GEMINI_API_KEY environment variable not set"},
		{"MissingGroqAPIKey", func() { setEnv("LLM_PROVIDER", "groq"); os.Unsetenv("GROQ_API_KEY") }, "GROQ_API_KEY environment variable not set"},
		{"MissingSecret", func() { os.Unsetenv("CONFIRMATION_SECRET") }, "CONFIRMATION_SECRET environment variable not set"},
		{"MissingPostgresDSN", func() { setEnv("STORE_DRIVER", "postgres"); os.Unsetenv("PG_DSN") }, "PG_DSN environment variable not set"},
		{"MissingWebhookURL", func() { setEnv("TELEGRAM_BOT_TOKEN", "tok"); os.Unsetenv("TELEGRAM_WEBHOOK_URL") }, "TELEGRAM_WEBHOOK_URL environment variable not set"},
	}
	for _, tc := range missing {
		t.Run(tc.name, func(t *testing.T) {
			base()
			tc.prepare()

			_, err := NewFromEnv()
			if err == nil {
				t.Fatalf("Expected an error, got nil")
			}
			if err.Error() != tc.want {
				t.Errorf("Expected error '%s', got '%s'", tc.want, err.Error())
			}
		})
	}

	t.Run("Timezone", func(t *testing.T) {
		base()
		setEnv("TIMEZONE", "America/Sao_Paulo")
		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Location().String() != "America/Sao_Paulo" {
			t.Errorf("Expected America/Sao_Paulo, got %v", cfg.Location())
		}

		setEnv("TIMEZONE", "Mars/Olympus_Mons")
		_, err = NewFromEnv()
		if err == nil || !strings.Contains(err.Error(), `invalid TIMEZONE "Mars/Olympus_Mons"`) {
			t.Errorf("Expected an invalid TIMEZONE error, got %v", err)
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		base()
		setEnv("LLM_PROVIDER", "openai")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for unknown provider")
		}
	})
}
