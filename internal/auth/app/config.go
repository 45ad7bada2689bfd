package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest JWT secret accepted for HS256.
const MinSecretLength = 32

var (
	ErrWeakJWTSecret        = fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	ErrMissingWebhookSecret = errors.New("WEBHOOK_SECRET is required")
	ErrUnknownLimiter       = errors.New("RATELIMIT_BACKEND must be memory or redis")
	ErrInvalidWebhook       = errors.New("invalid webhook delivery settings")
)

type Config struct {
	Domain        string // Optional: expected domain in sign-in messages, unchecked when empty
	JWTSecret     string // Required: HS256 signing secret, at least 32 bytes
	WebhookSecret string // Required: HMAC key for webhook signatures

	DatabaseFile     string // Optional: path to SQLite database file (default: ./candor.db)
	RedisURL         string // Optional: enables the Redis limiter and stream transport
	RateLimitBackend string // Optional: memory or redis (default: redis when REDIS_URL is set)

	NonceTTL             time.Duration // Optional: challenge lifetime (default: 5m)
	SessionTTL           time.Duration // Optional: token lifetime (default: 24h)
	Retention            time.Duration // Optional: how long stale rows are kept (default: 7 days)
	HousekeepingInterval time.Duration // Optional: cleanup interval (default: 24h)

	WebhookMaxAttempts    int           // Optional: delivery attempts (default: 3)
	WebhookInitialBackoff time.Duration // Optional: first retry delay, doubled each time (default: 1s)
	WebhookTimeout        time.Duration // Optional: per attempt timeout (default: 10s)
	WebhookDebounce       time.Duration // Optional: quiet period per rule and URL (default: 10s)
	WebhookRatePerSec     float64       // Optional: outbound request budget (default: 20)
	WebhookWorkers        int           // Optional: concurrent deliveries (default: 8)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Domain:        os.Getenv("CANDOR_DOMAIN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		DatabaseFile:     getEnvOrDefault("DATABASE_FILE", "candor.db"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RateLimitBackend: strings.ToLower(os.Getenv("RATELIMIT_BACKEND")),

		NonceTTL:             getEnvDurationOrDefault("NONCE_TTL", 5*time.Minute),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		Retention:            time.Duration(getEnvIntOrDefault("LOG_RETENTION_DAYS", 7)) * 24 * time.Hour,
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 24*time.Hour),

		WebhookMaxAttempts:    getEnvIntOrDefault("WEBHOOK_MAX_ATTEMPTS", 3),
		WebhookInitialBackoff: getEnvDurationOrDefault("WEBHOOK_INITIAL_BACKOFF", time.Second),
		WebhookTimeout:        getEnvDurationOrDefault("WEBHOOK_TIMEOUT", 10*time.Second),
		WebhookDebounce:       getEnvDurationOrDefault("WEBHOOK_DEBOUNCE", 10*time.Second),
		WebhookRatePerSec:     getEnvFloatOrDefault("WEBHOOK_RATE_PER_SEC", 20),
		WebhookWorkers:        getEnvIntOrDefault("WEBHOOK_WORKERS", 8),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.RateLimitBackend == "" {
		cfg.RateLimitBackend = "memory"
		if cfg.RedisURL != "" {
			cfg.RateLimitBackend = "redis"
		}
	}

	return cfg
}

// Validate reports configuration the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, ErrWeakJWTSecret)
	}
	if c.WebhookSecret == "" {
		errs = append(errs, ErrMissingWebhookSecret)
	}
	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("RATELIMIT_BACKEND=redis requires REDIS_URL"))
		}
	default:
		errs = append(errs, ErrUnknownLimiter)
	}
	if c.WebhookMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: WEBHOOK_MAX_ATTEMPTS must be at least 1", ErrInvalidWebhook))
	}
	if c.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: WEBHOOK_TIMEOUT must be positive", ErrInvalidWebhook))
	}
	if c.WebhookWorkers < 1 {
		errs = append(errs, fmt.Errorf("%w: WEBHOOK_WORKERS must be at least 1", ErrInvalidWebhook))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}
