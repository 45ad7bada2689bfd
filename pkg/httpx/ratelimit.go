package httpx

import (
	"context"
	"math"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// Name namespaces keys so one limiter can serve several routes
	Name string
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the fixed window length
	Window time.Duration
}

// Rate limit profiles for the public routes.
// These can be overridden via environment variables (see init() below)
var (
	// NonceLimit guards challenge issuance.
	// Override with: RATELIMIT_NONCE_REQUESTS, RATELIMIT_NONCE_WINDOW_SEC
	NonceLimit = RateLimitConfig{Name: "nonce", RequestsPerWindow: 10, Window: time.Minute}

	// VerifyLimit guards signature verification (brute force prevention).
	// Override with: RATELIMIT_VERIFY_REQUESTS, RATELIMIT_VERIFY_WINDOW_SEC
	VerifyLimit = RateLimitConfig{Name: "verify", RequestsPerWindow: 5, Window: time.Minute}

	// SessionLimit for authenticated session operations.
	// Override with: RATELIMIT_SESSION_REQUESTS, RATELIMIT_SESSION_WINDOW_SEC
	SessionLimit = RateLimitConfig{Name: "session", RequestsPerWindow: 60, Window: time.Minute}

	// NotifyLimit caps how fast one wallet can enqueue alert notifications.
	// Override with: RATELIMIT_NOTIFY_REQUESTS, RATELIMIT_NOTIFY_WINDOW_SEC
	NotifyLimit = RateLimitConfig{Name: "notify", RequestsPerWindow: 30, Window: time.Minute}
)

func init() {
	// Allow overriding rate limits via environment variables (useful for testing)
	NonceLimit = ParseRateLimitFromEnv("NONCE", NonceLimit)
	VerifyLimit = ParseRateLimitFromEnv("VERIFY", VerifyLimit)
	SessionLimit = ParseRateLimitFromEnv("SESSION", SessionLimit)
	NotifyLimit = ParseRateLimitFromEnv("NOTIFY", NotifyLimit)

	TrustedProxies = ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))
}

// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP headers
// are believed. Requests from any other peer are keyed by their socket
// address. Set with TRUSTED_PROXIES, a comma-separated list of IPs or CIDRs.
var TrustedProxies []netip.Prefix

// ParseTrustedProxies parses a comma-separated list of IPs and CIDRs.
// Entries that parse as neither are skipped.
func ParseTrustedProxies(list string) []netip.Prefix {
	var out []netip.Prefix
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(field); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(field); err == nil {
			addr = addr.Unmap()
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: RATELIMIT_{prefix}_{field}
// For example: RATELIMIT_VERIFY_REQUESTS, RATELIMIT_VERIFY_WINDOW_SEC
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	return config
}

// RateLimitResult is the outcome of a single limiter check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window resets, never
// less than one.
func (r RateLimitResult) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(r.ResetAt.Sub(now).Seconds()))
	return max(secs, 1)
}

// Limiter counts events per key in fixed windows.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) RateLimitResult
}

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, wallet)
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// X-Forwarded-For and X-Real-IP are only honoured when the peer is one of
// TrustedProxies.
func IPKeyExtractor(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrustedProxy(peer) {
		return peer
	}

	// Check X-Forwarded-For header (comma-separated list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return peer
}

func isTrustedProxy(peer string) bool {
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// WalletKeyExtractor extracts the authenticated wallet from the request context.
// Returns empty string if no wallet is found.
func WalletKeyExtractor(r *http.Request) string {
	if wallet, ok := r.Context().Value(CtxKeyWallet).(string); ok {
		return wallet
	}
	return ""
}

// CompositeKeyExtractor combines multiple key extractors with a separator.
// Example: CompositeKeyExtractor(":", WalletKeyExtractor, IPKeyExtractor)
// would produce keys like "7xKX...:192.168.1.1"
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// RateLimitMiddleware creates a rate limiting middleware backed by limiter.
// The keyExtractor determines how requests are grouped for rate limiting.
func RateLimitMiddleware(limiter Limiter, config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyExtractor(r)
			if key == "" {
				// If we can't extract a key, allow the request but log it
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if config.Name != "" {
				key = config.Name + ":" + key
			}

			res := limiter.Check(ctx, key, config.RequestsPerWindow, config.Window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := res.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client IP address.
func RateLimitByIP(limiter Limiter, config RateLimitConfig) Middleware {
	return RateLimitMiddleware(limiter, config, IPKeyExtractor)
}

// RateLimitByWallet limits by authenticated wallet, falling back to IP when
// the request carries no principal.
func RateLimitByWallet(limiter Limiter, config RateLimitConfig) Middleware {
	return RateLimitMiddleware(limiter, config, func(r *http.Request) string {
		if wallet := WalletKeyExtractor(r); wallet != "" {
			return wallet
		}
		return IPKeyExtractor(r)
	})
}
