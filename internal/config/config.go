// Package config loads the application configuration from environment
// variables. The bot token is the only fatal requirement: a missing
// model-API key merely disables the AI features while the rest of the
// bot stays usable.
package config

import (
	"fmt"
	"os"
	"strconv"

	"fitguru-bot/internal/bodymetrics"
)

// Config holds the configuration for the application.
type Config struct {
	// Telegram
	TelegramBotToken   string
	TelegramWebhookURL string
	AdminTelegramID    int64

	// External model
	LLMProvider  string // "groq" or "gemini"
	GroqAPIKey   string
	GeminiAPIKey string

	DatabasePath string

	// Empirical projection constants, overridable because they are
	// approximations rather than physical law.
	KcalPerKG              float64
	MaintenanceThresholdKG float64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "groq"
	}
	if provider != "groq" && provider != "gemini" {
		return nil, fmt.Errorf("LLM_PROVIDER must be \"groq\" or \"gemini\", got %q", provider)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/fitguru.db"
	}

	var adminID int64
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		adminID = id
	}

	kcalPerKG, err := envFloat("KCAL_PER_KG", bodymetrics.DefaultKcalPerKG)
	if err != nil {
		return nil, err
	}
	maintenance, err := envFloat("MAINTENANCE_THRESHOLD_KG", bodymetrics.DefaultMaintenanceThresholdKG)
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramBotToken:       botToken,
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		AdminTelegramID:        adminID,
		LLMProvider:            provider,
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		DatabasePath:           dbPath,
		KcalPerKG:              kcalPerKG,
		MaintenanceThresholdKG: maintenance,
	}, nil
}

// Projector builds a weight-change projector with the configured
// constants.
func (c *Config) Projector() bodymetrics.Projector {
	return bodymetrics.Projector{
		KcalPerKG:              c.KcalPerKG,
		MaintenanceThresholdKG: c.MaintenanceThresholdKG,
	}
}

// ModelAPIKey returns the key for the selected provider; empty means the
// model features run in degraded mode.
func (c *Config) ModelAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.GroqAPIKey
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
