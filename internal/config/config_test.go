package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLERK_SECRET_KEY", "sk_test_123")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_abc")
	t.Setenv("SEGMENT_WRITE_KEY", "seg_key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "https://api.segment.io", cfg.SegmentEndpoint)
	assert.Equal(t, 24*time.Hour, cfg.ReplayTTL)
	assert.Equal(t, float64(60), cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.StripeSecretKey)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_MissingClerkSecretKey(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_abc")
	t.Setenv("SEGMENT_WRITE_KEY", "seg_key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLERK_SECRET_KEY")
}

func TestLoad_MissingWebhookSecret(t *testing.T) {
	t.Setenv("CLERK_SECRET_KEY", "sk_test_123")
	t.Setenv("SEGMENT_WRITE_KEY", "seg_key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLERK_WEBHOOK_SECRET")
}

func TestLoad_MissingSegmentWriteKey(t *testing.T) {
	t.Setenv("CLERK_SECRET_KEY", "sk_test_123")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEGMENT_WRITE_KEY")
}

func TestLoad_CustomListenAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
}

func TestLoad_EndpointTrailingSlashTrimmed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SEGMENT_ENDPOINT", "http://localhost:9999/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.SegmentEndpoint)
}

func TestLoad_LogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "bogus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_InvalidReplayTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REPLAY_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPLAY_TTL")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_PER_MINUTE")
}
