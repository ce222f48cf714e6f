package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// EmailConfig selects and configures the outbound mail provider.
type EmailConfig struct {
	Provider  string
	From      string
	AWSRegion string
	WorkerURL string
	BatchSize int
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL        string
	DatabaseMaxConns   int
	RedisURL           string
	JWTSecret          string
	Port               string
	TokenTTL           time.Duration
	RateLimitOutreach  RateLimitConfig
	LogLevel           string
	LogFormat          string
	GeminiAPIKey       string
	GeminiModel        string
	DefaultPhoneRegion string
	Email              EmailConfig
}

const (
	EmailProviderSES    = "ses"
	EmailProviderWorker = "worker"
	EmailProviderLog    = "log"
)

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		Port:               getEnv("PORT", "8080"),
		TokenTTL:           parseDuration(getEnv("JWT_TTL", "24h")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "AU")),
		Email: EmailConfig{
			Provider:  strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderLog)),
			From:      getEnv("EMAIL_FROM", "hello@vendor-outreach.local"),
			AWSRegion: getEnv("AWS_REGION", "ap-southeast-2"),
			WorkerURL: os.Getenv("EMAIL_WORKER_URL"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_OUTREACH", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_OUTREACH value: %w", err)
	}
	cfg.RateLimitOutreach = rl

	batch, err := parsePositiveInt(getEnv("EMAIL_BATCH_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_BATCH_SIZE value: %w", err)
	}
	cfg.Email.BatchSize = batch

	maxConns, err := parsePositiveInt(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS value: %w", err)
	}
	cfg.DatabaseMaxConns = maxConns

	switch cfg.Email.Provider {
	case EmailProviderSES, EmailProviderLog:
	case EmailProviderWorker:
		if cfg.Email.WorkerURL == "" {
			return nil, fmt.Errorf("EMAIL_WORKER_URL is required when EMAIL_PROVIDER=worker")
		}
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER %q", cfg.Email.Provider)
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive integer, got %q", value)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
