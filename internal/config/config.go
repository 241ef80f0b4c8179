package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the growthsync server.
type Config struct {
	ListenAddr string
	LogLevel   slog.Level

	// Identity provider (Clerk).
	ClerkSecretKey     string
	ClerkWebhookSecret string

	// Analytics destinations.
	SegmentWriteKey string
	SegmentEndpoint string
	PostHogAPIKey   string // empty disables the PostHog sink
	PostHogEndpoint string

	// Payments provider. Empty disables the subscription endpoint.
	StripeSecretKey string

	// Webhook replay guard. Empty disables deduplication.
	RedisAddr string
	ReplayTTL time.Duration

	CORSOrigin         string
	RateLimitPerMinute float64

	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         ":8080",
		SegmentEndpoint:    "https://api.segment.io",
		PostHogEndpoint:    "https://us.i.posthog.com",
		ReplayTTL:          24 * time.Hour,
		RateLimitPerMinute: 60,
		ReadHeaderTimeout:  10 * time.Second,
		IdleTimeout:        120 * time.Second,
		ShutdownTimeout:    10 * time.Second,
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	cfg.ClerkSecretKey = os.Getenv("CLERK_SECRET_KEY")
	if cfg.ClerkSecretKey == "" {
		return nil, fmt.Errorf("CLERK_SECRET_KEY environment variable is required")
	}

	cfg.ClerkWebhookSecret = os.Getenv("CLERK_WEBHOOK_SECRET")
	if cfg.ClerkWebhookSecret == "" {
		return nil, fmt.Errorf("CLERK_WEBHOOK_SECRET environment variable is required")
	}

	cfg.SegmentWriteKey = os.Getenv("SEGMENT_WRITE_KEY")
	if cfg.SegmentWriteKey == "" {
		return nil, fmt.Errorf("SEGMENT_WRITE_KEY environment variable is required")
	}

	if v := os.Getenv("SEGMENT_ENDPOINT"); v != "" {
		cfg.SegmentEndpoint = strings.TrimRight(v, "/")
	}

	cfg.PostHogAPIKey = os.Getenv("POSTHOG_API_KEY")
	if v := os.Getenv("POSTHOG_ENDPOINT"); v != "" {
		cfg.PostHogEndpoint = strings.TrimRight(v, "/")
	}

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if v := os.Getenv("REPLAY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REPLAY_TTL value %q: %w", v, err)
		}
		cfg.ReplayTTL = d
	}

	cfg.CORSOrigin = os.Getenv("CORS_ORIGIN")

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE value %q: must be a positive number", v)
		}
		cfg.RateLimitPerMinute = f
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("READ_HEADER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid READ_HEADER_TIMEOUT: %w", err)
		}
		cfg.ReadHeaderTimeout = d
	}

	if v := os.Getenv("IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
		}
		cfg.IdleTimeout = d
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL value %q: must be debug, info, warn, or error", s)
	}
}
