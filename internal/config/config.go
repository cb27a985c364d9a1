package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	OpenAIAPIKey string
	OpenAIModel  string

	ImageDir string

	ForecastTimeoutSecs  int
	ForecastCacheTTLSecs int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, user registry disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, full analysis will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.ImageDir = strings.TrimSpace(os.Getenv("IMAGE_DIR"))
	if cfg.ImageDir == "" {
		cfg.ImageDir = "imgs"
	}

	cfg.ForecastTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("FORECAST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ForecastTimeoutSecs = n
		}
	}

	cfg.ForecastCacheTTLSecs = 300
	if v := strings.TrimSpace(os.Getenv("FORECAST_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ForecastCacheTTLSecs = n
		}
	}

	return cfg
}
