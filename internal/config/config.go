package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// app config: AI provider selection, interview pacing and the optional
// infrastructure endpoints (Redis, Postgres, webhook).
type Config struct {
	Provider       string
	Port           string
	QuestionBudget int
	CallTimeout    time.Duration
	SessionTTL     time.Duration
	StreamPacing   time.Duration

	RedisAddr  string
	WebhookURL string

	ExportSchedule string
	ExportDir      string
	ExportEnabled  bool
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		Port:           getEnvOrDefault("PORT", "4000"),
		QuestionBudget: getEnvIntOrDefault("INTERVIEW_QUESTION_BUDGET", 5),
		CallTimeout:    getEnvDurationOrDefault("AI_CALL_TIMEOUT", 120*time.Second),
		SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		StreamPacing:   getEnvDurationOrDefault("STREAM_PACING", 100*time.Millisecond),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		ExportSchedule: getEnvOrDefault("EXPORT_SCHEDULE", "0 3 * * *"),
		ExportDir:      getEnvOrDefault("EXPORT_DIR", "./exports"),
		ExportEnabled:  getEnvOrDefault("EXPORT_ENABLED", "false") == "true",
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" && config.Provider != "openai" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, openai")
	}
	if config.QuestionBudget < 1 {
		return fmt.Errorf("INTERVIEW_QUESTION_BUDGET must be at least 1, got %d", config.QuestionBudget)
	}
	if config.CallTimeout <= 0 {
		return errors.New("AI_CALL_TIMEOUT must be positive")
	}
	// Provider credentials are validated by the provider's own NewConfig.
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
