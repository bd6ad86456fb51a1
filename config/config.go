// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "quotedesk-dev-secret-change-me"

type Config struct {
	Auth       AuthConfig
	Quotations QuotationConfig
	StaticDir  string
	LogLevel   string
	SeedDemo   bool
}

type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CookieName     string
	LoginRateLimit string
}

type QuotationConfig struct {
	ValidityDays int
	NumberBase   int
}

// LoadEnvFile copies the variables of the .env file (or the given files)
// into the process environment without overriding ones already set.
func LoadEnvFile(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// LogLevel is the LOG_LEVEL setting, lower cased, "info" when unset. It is
// read on its own so the logger can be installed before FromEnv runs.
func LogLevel() string {
	return strings.ToLower(getEnv("LOG_LEVEL", "info"))
}

// FromEnv builds the configuration from the process environment only.
// Invalid values fall back to their defaults with a warning.
func FromEnv() Config {
	cfg := Config{
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", devSecret),
			TokenTTL:       getDuration("TOKEN_TTL", 30*24*time.Hour),
			CookieName:     getEnv("AUTH_COOKIE_NAME", "quotedesk_token"),
			LoginRateLimit: getEnv("LOGIN_RATE_LIMIT", "10-M"),
		},
		Quotations: QuotationConfig{
			ValidityDays: getInt("QUOTATION_VALIDITY_DAYS", 15),
			NumberBase:   getInt("QUOTATION_NUMBER_BASE", 1000),
		},
		StaticDir: getEnv("STATIC_DIR", "./static"),
		LogLevel:  LogLevel(),
		SeedDemo:  getBool("SEED_DEMO", false),
	}

	if cfg.Auth.JWTSecret == devSecret {
		slog.Warn("config: JWT_SECRET not set, using development secret")
	}
	if cfg.Quotations.ValidityDays < 0 {
		slog.Warn("config: negative QUOTATION_VALIDITY_DAYS, using default", "value", cfg.Quotations.ValidityDays)
		cfg.Quotations.ValidityDays = 15
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("config: invalid integer, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("config: invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("config: invalid boolean, using default", "key", key, "value", raw)
		return defaultValue
	}
	return b
}
