// Package webhook delivers signed alert notifications to third-party URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts        = 3
	DefaultInitialBackoff     = time.Second
	DefaultAttemptTimeout     = 10 * time.Second
	DefaultDebounceWindow     = 10 * time.Second
	DefaultMaxDebounceEntries = 10_000

	userAgent = "candor-webhook/1"
)

// errTerminal marks a response that must not be retried.
var errTerminal = errors.New("webhook: terminal response")

// Dispatcher posts payloads to webhook URLs. Deliver is safe for concurrent use.
type Dispatcher struct {
	secret []byte
	client *http.Client
	logger *slog.Logger
	limit  *rate.Limiter

	maxAttempts        int
	initialBackoff     time.Duration
	attemptTimeout     time.Duration
	debounceWindow     time.Duration
	maxDebounceEntries int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu           sync.Mutex
	lastDelivery map[string]time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default SSRF-guarded client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithRateLimit caps outbound requests across all targets.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(d *Dispatcher) { d.limit = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithRetry sets the attempt budget and the first backoff; each later
// backoff doubles.
func WithRetry(maxAttempts int, initialBackoff time.Duration) Option {
	return func(d *Dispatcher) {
		d.maxAttempts = maxAttempts
		d.initialBackoff = initialBackoff
	}
}

// WithAttemptTimeout bounds each individual request.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.attemptTimeout = timeout }
}

// WithDebounce sets the quiet period after a successful delivery and the
// number of targets remembered.
func WithDebounce(window time.Duration, maxEntries int) Option {
	return func(d *Dispatcher) {
		d.debounceWindow = window
		d.maxDebounceEntries = maxEntries
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithSleep overrides how the dispatcher waits between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleep = sleep }
}

// NewDispatcher creates a Dispatcher signing bodies with secret.
func NewDispatcher(secret []byte, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		secret:             secret,
		logger:             slog.Default(),
		maxAttempts:        DefaultMaxAttempts,
		initialBackoff:     DefaultInitialBackoff,
		attemptTimeout:     DefaultAttemptTimeout,
		debounceWindow:     DefaultDebounceWindow,
		maxDebounceEntries: DefaultMaxDebounceEntries,
		now:                time.Now,
		sleep:              sleepContext,
		lastDelivery:       make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = NewSafeClient()
	}
	return d
}

// NewSafeClient returns an http.Client that refuses to connect to internal
// addresses and re-validates every redirect hop.
func NewSafeClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: dialControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("webhook: too many redirects")
			}
			if !IsAllowedURL(req.URL.String()) {
				return ErrBlockedDestination
			}
			return nil
		},
	}
}

// Deliver posts payload to url and reports whether a 2xx was received. It
// never returns an error; failures are logged.
func (d *Dispatcher) Deliver(ctx context.Context, url string, payload Payload) bool {
	log := d.logger.With(
		slog.String("rule_id", payload.RuleID),
		slog.String("event", payload.Event),
	)

	// 1. Refuse internal destinations
	if !IsAllowedURL(url) {
		log.Warn("webhook: blocked destination", slog.String("url", url))
		return false
	}

	// 2. Skip targets delivered to within the debounce window
	key := payload.debounceKey(url)
	if d.debounced(key) {
		log.Debug("webhook: debounced")
		return false
	}

	// 3. Serialize once, the signature covers these exact bytes
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("webhook: marshal payload", slog.Any("err", err))
		return false
	}
	signature := SignatureHeaderValue(d.secret, body)

	// 4. Attempt with exponential backoff
	backoff := d.initialBackoff
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if d.limit != nil {
			if err := d.limit.Wait(ctx); err != nil {
				log.Warn("webhook: rate limiter wait aborted", slog.Any("err", err))
				return false
			}
		}

		err := d.attempt(ctx, url, payload.Event, body, signature)
		if err == nil {
			d.recordDelivery(key)
			log.Info("webhook: delivered", slog.Int("attempt", attempt))
			return true
		}

		log.Warn("webhook: attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", d.maxAttempts),
			slog.Any("err", err),
		)
		if errors.Is(err, errTerminal) {
			return false
		}

		if attempt < d.maxAttempts {
			if err := d.sleep(ctx, backoff); err != nil {
				log.Warn("webhook: retry aborted", slog.Any("err", err))
				return false
			}
			backoff *= 2
		}
	}

	log.Error("webhook: delivery failed after retries", slog.Int("attempts", d.maxAttempts))
	return false
}

func (d *Dispatcher) attempt(ctx context.Context, url, event string, body []byte, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", errTerminal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(SignatureHeader, signature)
	req.Header.Set(EventHeader, event)

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedDestination) {
			return fmt.Errorf("%w: %v", errTerminal, err)
		}
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %d", errTerminal, resp.StatusCode)
	default:
		return fmt.Errorf("webhook: status %d", resp.StatusCode)
	}
}

func (d *Dispatcher) debounced(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.lastDelivery[key]
	return ok && d.now().Sub(last) < d.debounceWindow
}

// recordDelivery stamps key, evicting the oldest entry when full.
func (d *Dispatcher) recordDelivery(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.lastDelivery[key]; !ok && len(d.lastDelivery) >= d.maxDebounceEntries {
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, t := range d.lastDelivery {
			if oldestKey == "" || t.Before(oldest) {
				oldestKey, oldest = k, t
			}
		}
		delete(d.lastDelivery, oldestKey)
	}
	d.lastDelivery[key] = d.now()
}

// tracked reports how many targets are in the debounce map.
func (d *Dispatcher) tracked() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastDelivery)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
