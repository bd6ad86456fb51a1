package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"JWT_SECRET", "TOKEN_TTL", "AUTH_COOKIE_NAME", "LOGIN_RATE_LIMIT",
		"QUOTATION_VALIDITY_DAYS", "QUOTATION_NUMBER_BASE", "STATIC_DIR", "LOG_LEVEL", "SEED_DEMO",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	if cfg.Auth.JWTSecret != devSecret {
		t.Errorf("JWTSecret = %q, want dev secret", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("TokenTTL = %v, want 720h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.CookieName != "quotedesk_token" {
		t.Errorf("CookieName = %q", cfg.Auth.CookieName)
	}
	if cfg.Auth.LoginRateLimit != "10-M" {
		t.Errorf("LoginRateLimit = %q", cfg.Auth.LoginRateLimit)
	}
	if cfg.Quotations.ValidityDays != 15 || cfg.Quotations.NumberBase != 1000 {
		t.Errorf("Quotations = %+v, want 15/1000", cfg.Quotations)
	}
	if cfg.StaticDir != "./static" || cfg.LogLevel != "info" || cfg.SeedDemo {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("QUOTATION_VALIDITY_DAYS", "30")
	t.Setenv("QUOTATION_NUMBER_BASE", "5000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SEED_DEMO", "true")

	cfg := FromEnv()

	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Quotations.ValidityDays != 30 || cfg.Quotations.NumberBase != 5000 {
		t.Errorf("Quotations = %+v", cfg.Quotations)
	}
	if cfg.LogLevel != "debug" || !cfg.SeedDemo {
		t.Errorf("LogLevel=%q SeedDemo=%v", cfg.LogLevel, cfg.SeedDemo)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("QUOTATION_VALIDITY_DAYS", "-3")
	t.Setenv("QUOTATION_NUMBER_BASE", "abc")
	t.Setenv("SEED_DEMO", "maybe")

	cfg := FromEnv()

	if cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("TokenTTL = %v, want default", cfg.Auth.TokenTTL)
	}
	if cfg.Quotations.ValidityDays != 15 {
		t.Errorf("ValidityDays = %d, want 15", cfg.Quotations.ValidityDays)
	}
	if cfg.Quotations.NumberBase != 1000 {
		t.Errorf("NumberBase = %d, want 1000", cfg.Quotations.NumberBase)
	}
	if cfg.SeedDemo {
		t.Error("SeedDemo should fall back to false")
	}
}

func TestLoadEnvFile_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=DEBUG\nSTATIC_DIR=/from/file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")
	t.Setenv("STATIC_DIR", "/from/env")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := LogLevel(); got != "debug" {
		t.Errorf("LogLevel() = %q, want debug", got)
	}
	if got := FromEnv().StaticDir; got != "/from/env" {
		t.Errorf("StaticDir = %q, want the environment value", got)
	}
}
