package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	Notifier      string // "telegram" or "console"
	HTTPAddr      string

	PollInterval    time.Duration
	LookBack        time.Duration
	AuditInterval   time.Duration
	AuditLookBack   time.Duration
	DispatchTimeout time.Duration
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Notifier:      getEnvOrDefault("NOTIFIER", "telegram"),
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":8080"),
	}

	var err error
	if cfg.PollInterval, err = getDurationOrDefault("POLL_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.LookBack, err = getDurationOrDefault("LOOK_BACK", time.Hour); err != nil {
		return nil, err
	}
	if cfg.AuditInterval, err = getDurationOrDefault("AUDIT_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.AuditLookBack, err = getDurationOrDefault("AUDIT_LOOK_BACK", 32*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DispatchTimeout, err = getDurationOrDefault("DISPATCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
