package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPromoDeadline is the wall-clock end of the promotion window.
const DefaultPromoDeadline = "2026-01-15T23:59:59"

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// CRM webhook
	CRMWebhookURL       string
	CRMRetryEnabled     bool
	CRMRetryInterval    time.Duration
	CRMRetryMaxAttempts int

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Promotion countdown
	PromoDeadline string
	PromoTimezone string

	SessionTTL         time.Duration
	CORSAllowedOrigins []string
	SubmitRatePerSec   float64
	SubmitRateBurst    int

	// Floating contact widget
	ContactManagerName string
	ContactWhatsAppURL string
	ContactQuotaNote   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		CRMWebhookURL:       strings.TrimSpace(getEnv("CRM_WEBHOOK_URL", "")),
		CRMRetryEnabled:     getEnvAsBool("CRM_RETRY_ENABLED", false),
		CRMRetryInterval:    getEnvAsDuration("CRM_RETRY_INTERVAL", 30*time.Second),
		CRMRetryMaxAttempts: getEnvAsInt("CRM_RETRY_MAX_ATTEMPTS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		PromoDeadline: getEnv("PROMO_DEADLINE", DefaultPromoDeadline),
		PromoTimezone: getEnv("PROMO_TIMEZONE", "Europe/Moscow"),

		SessionTTL:         getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		SubmitRatePerSec:   getEnvAsFloat("SUBMIT_RATE_PER_SEC", 0.5),
		SubmitRateBurst:    getEnvAsInt("SUBMIT_RATE_BURST", 5),

		ContactManagerName: getEnv("CONTACT_MANAGER_NAME", "Юрий Котов"),
		ContactWhatsAppURL: getEnv("CONTACT_WHATSAPP_URL", ""),
		ContactQuotaNote:   getEnv("CONTACT_QUOTA_NOTE", "Осталось 3 квоты до 1 марта. Какую модель рассчитаем?"),
	}
}

// PromoDeadlineTime resolves the configured deadline in the configured zone.
// An unknown zone falls back to UTC; an unparsable deadline falls back to
// DefaultPromoDeadline.
func (c *Config) PromoDeadlineTime() time.Time {
	loc, err := time.LoadLocation(c.PromoTimezone)
	if err != nil || c.PromoTimezone == "" {
		loc = time.UTC
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(c.PromoDeadline), loc); err == nil {
			return t
		}
	}
	t, _ := time.ParseInLocation("2006-01-02T15:04:05", DefaultPromoDeadline, loc)
	return t
}

// RetryQueueEnabled reports whether failed leads should be parked in Redis.
func (c *Config) RetryQueueEnabled() bool {
	return c.CRMRetryEnabled && strings.TrimSpace(c.RedisAddr) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
