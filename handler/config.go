package handler

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Host string

	// Bitrix24 inbound webhook configuration. BitrixWebhookURL is the base
	// REST URL including the user id and token, e.g.
	// https://example.bitrix24.ru/rest/1/abc123 — the method name is appended.
	BitrixWebhookURL string
	BitrixTimeoutSec int

	// Webhook security (optional). When empty, signature verification is
	// skipped entirely.
	WebhookSecret string

	// Logging configuration
	LogLevel string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Host: getEnv("HOST", "0.0.0.0"),

		BitrixWebhookURL: getEnv("BITRIX_WEBHOOK_URL", ""),
		BitrixTimeoutSec: getEnvAsInt("BITRIX_TIMEOUT_SEC", 15),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer with a fallback default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// HasBitrixConfig returns true if the Bitrix REST webhook URL is configured
func (c *Config) HasBitrixConfig() bool {
	return c.BitrixWebhookURL != ""
}

// HasWebhookSecret returns true if inbound signature verification is enabled
func (c *Config) HasWebhookSecret() bool {
	return c.WebhookSecret != ""
}

// BitrixTimeout returns the per-request timeout for outbound Bitrix calls
func (c *Config) BitrixTimeout() time.Duration {
	if c.BitrixTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.BitrixTimeoutSec) * time.Second
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.LogLevel == "production" || os.Getenv("GIN_MODE") == "release"
}
