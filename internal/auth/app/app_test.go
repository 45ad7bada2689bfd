package app

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Domain:              "candor.dev",
		JWTSecret:           strings.Repeat("j", MinSecretLength),
		WebhookSecret:       "hook",
		DatabaseFile:        filepath.Join(t.TempDir(), "candor.db"),
		RateLimitBackend:    "memory",
		ShutdownGracePeriod: time.Second,

		WebhookMaxAttempts:    3,
		WebhookInitialBackoff: time.Second,
		WebhookTimeout:        10 * time.Second,
		WebhookDebounce:       10 * time.Second,
		WebhookRatePerSec:     20,
		WebhookWorkers:        2,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"CANDOR_DOMAIN", "JWT_SECRET", "WEBHOOK_SECRET", "DATABASE_FILE", "REDIS_URL", "RATELIMIT_BACKEND", "NONCE_TTL", "LOG_RETENTION_DAYS", "PORT", "WEBHOOK_WORKERS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "candor.db", cfg.DatabaseFile)
	require.Equal(t, "memory", cfg.RateLimitBackend)
	require.Equal(t, 5*time.Minute, cfg.NonceTTL)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Retention)
	require.Equal(t, 24*time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, 3, cfg.WebhookMaxAttempts)
	require.Equal(t, 8, cfg.WebhookWorkers)
	require.Equal(t, time.Second, cfg.WebhookInitialBackoff)
	require.Equal(t, 10*time.Second, cfg.WebhookTimeout)
	require.Equal(t, 10*time.Second, cfg.WebhookDebounce)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CANDOR_DOMAIN", "app.candor.dev")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RATELIMIT_BACKEND", "")
	t.Setenv("NONCE_TTL", "90")
	t.Setenv("LOG_RETENTION_DAYS", "30")
	t.Setenv("WEBHOOK_RATE_PER_SEC", "2.5")
	t.Setenv("PORT", "not-a-port")

	cfg := LoadConfig()
	require.Equal(t, "app.candor.dev", cfg.Domain)
	require.Equal(t, "redis", cfg.RateLimitBackend)
	require.Equal(t, 90*time.Second, cfg.NonceTTL)
	require.Equal(t, 30*24*time.Hour, cfg.Retention)
	require.InDelta(t, 2.5, cfg.WebhookRatePerSec, 0.001)
	require.Equal(t, 8080, cfg.Port)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig(t).Validate())

	short := validConfig(t)
	short.JWTSecret = "short"
	require.ErrorIs(t, short.Validate(), ErrWeakJWTSecret)

	noHook := validConfig(t)
	noHook.WebhookSecret = ""
	require.ErrorIs(t, noHook.Validate(), ErrMissingWebhookSecret)

	badBackend := validConfig(t)
	badBackend.RateLimitBackend = "memcached"
	require.ErrorIs(t, badBackend.Validate(), ErrUnknownLimiter)

	redisNoURL := validConfig(t)
	redisNoURL.RateLimitBackend = "redis"
	require.Error(t, redisNoURL.Validate())

	t.Run("webhook delivery settings", func(t *testing.T) {
		for name, mutate := range map[string]func(c *Config){
			"no attempts":      func(c *Config) { c.WebhookMaxAttempts = 0 },
			"negative timeout": func(c *Config) { c.WebhookTimeout = -time.Second },
			"zero timeout":     func(c *Config) { c.WebhookTimeout = 0 },
			"no workers":       func(c *Config) { c.WebhookWorkers = 0 },
		} {
			cfg := validConfig(t)
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidWebhook, name)
		}
	})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.JWTSecret = ""
	_, err := NewWithLogger(cfg, slogx.Discard())
	require.ErrorIs(t, err, ErrWeakJWTSecret)
}

func TestApplicationLifecycle(t *testing.T) {
	ctx := context.Background()
	app, err := NewWithLogger(validConfig(t), slogx.Discard())
	require.NoError(t, err)
	require.NoError(t, app.Start())

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	client := authsdk.NewSDKClient(srv.URL)
	sess, err := client.SignIn(ctx, "candor.dev", key)
	require.NoError(t, err)

	info, err := sess.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, sess.Wallet(), info.Wallet)

	ready, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "gochannel", ready.Checks.Alerts)

	require.NoError(t, app.Shutdown())
}
