package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("IMAGE_DIR", "")
	t.Setenv("FORECAST_TIMEOUT_SECS", "")
	t.Setenv("FORECAST_CACHE_TTL_SECS", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %s", cfg.OpenAIModel)
	}
	if cfg.ImageDir != "imgs" {
		t.Fatalf("expected default image dir, got %s", cfg.ImageDir)
	}
	if cfg.ForecastTimeoutSecs != 30 {
		t.Fatalf("expected default forecast timeout 30, got %d", cfg.ForecastTimeoutSecs)
	}
	if cfg.ForecastCacheTTLSecs != 300 {
		t.Fatalf("expected default cache TTL 300, got %d", cfg.ForecastCacheTTLSecs)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6380")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("IMAGE_DIR", "/tmp/charts")
	t.Setenv("FORECAST_TIMEOUT_SECS", "10")
	t.Setenv("FORECAST_CACHE_TTL_SECS", "60")

	cfg := Load()
	if cfg.TelegramBotToken != "tok" || cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("unexpected transport/db config: %+v", cfg)
	}
	if cfg.RedisURL != "redis:6380" || cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("unexpected redis/model config: %+v", cfg)
	}
	if cfg.ImageDir != "/tmp/charts" {
		t.Fatalf("unexpected image dir: %s", cfg.ImageDir)
	}
	if cfg.ForecastTimeoutSecs != 10 || cfg.ForecastCacheTTLSecs != 60 {
		t.Fatalf("unexpected forecast tuning: %+v", cfg)
	}
}

func TestLoadIgnoresInvalidIntegers(t *testing.T) {
	t.Setenv("FORECAST_TIMEOUT_SECS", "not-a-number")
	t.Setenv("FORECAST_CACHE_TTL_SECS", "-5")

	cfg := Load()
	if cfg.ForecastTimeoutSecs != 30 {
		t.Fatalf("expected fallback timeout 30, got %d", cfg.ForecastTimeoutSecs)
	}
	if cfg.ForecastCacheTTLSecs != 300 {
		t.Fatalf("expected fallback TTL 300, got %d", cfg.ForecastCacheTTLSecs)
	}
}
