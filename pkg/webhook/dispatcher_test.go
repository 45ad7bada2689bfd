package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// targetURL is plain http since routeTo dials an httptest server without TLS.
const targetURL = "http://hooks.example.com/candor"

var testSecret = []byte("webhook-secret")

// routeTo sends every request to srv regardless of the URL host, so targets
// can use public hostnames that pass the destination filter.
func routeTo(srv *httptest.Server) *http.Client {
	addr := srv.Listener.Addr().String()
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func (r *recordedSleeps) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testPayload(ruleID string) Payload {
	return Payload{
		Event:    EventAlertTriggered,
		RuleID:   ruleID,
		RuleName: "High spend",
		Alert: Alert{
			ID:        "alert-1",
			Message:   "Spend exceeded $10",
			Severity:  "warning",
			SessionID: "session-1",
		},
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// statusServer answers with the next status from statuses, repeating the last.
func statusServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		idx := min(n, len(statuses)) - 1
		w.WriteHeader(statuses[idx])
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDeliver_SignsAndPosts(t *testing.T) {
	var (
		gotBody   []byte
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)))
	require.True(t, d.Deliver(context.Background(), targetURL, testPayload("rule-1")))

	require.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	require.Equal(t, EventAlertTriggered, gotHeader.Get(EventHeader))
	require.Equal(t, "sha256="+Sign(testSecret, gotBody), gotHeader.Get(SignatureHeader))
	require.True(t, VerifySignature(testSecret, gotBody, gotHeader.Get(SignatureHeader)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	require.Equal(t, "alert.triggered", decoded["event"])
	require.Equal(t, "rule-1", decoded["ruleId"])
	require.Equal(t, "High spend", decoded["ruleName"])
	alert := decoded["alert"].(map[string]any)
	require.Equal(t, "session-1", alert["sessionId"])
	require.NotContains(t, alert, "eventId")
}

func TestDeliver_Debounce(t *testing.T) {
	srv, calls := statusServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithClock(clock.Now))
	ctx := context.Background()

	require.True(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))
	require.False(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))
	require.EqualValues(t, 1, calls.Load())

	// Other rules are unaffected
	require.True(t, d.Deliver(ctx, targetURL, testPayload("rule-2")))
	require.EqualValues(t, 2, calls.Load())

	clock.Advance(9 * time.Second)
	require.False(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))

	clock.Advance(time.Second)
	require.True(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))
	require.EqualValues(t, 3, calls.Load())
}

func TestDeliver_DebounceIsScopedPerOwner(t *testing.T) {
	srv, calls := statusServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithClock(clock.Now))
	ctx := context.Background()

	other := testPayload("shared-rule")
	other.Scope = "wallet-b"
	require.True(t, d.Deliver(ctx, "http://other.example.com/hook", other))

	// Same rule id from another owner is not suppressed
	owner := testPayload("shared-rule")
	owner.Scope = "wallet-a"
	require.True(t, d.Deliver(ctx, targetURL, owner))
	require.False(t, d.Deliver(ctx, targetURL, owner))
	require.EqualValues(t, 2, calls.Load())
}

func TestDeliver_ScopeIsNotSent(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p := testPayload("rule-1")
	p.Scope = "wallet-a"
	require.True(t, NewDispatcher(testSecret, WithHTTPClient(routeTo(srv))).Deliver(context.Background(), targetURL, p))
	require.NotContains(t, string(body), "wallet-a")
}

func TestDeliver_FailuresDoNotDebounce(t *testing.T) {
	srv, calls := statusServer(t, http.StatusBadRequest, http.StatusOK)
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)))
	ctx := context.Background()

	require.False(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))
	require.True(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))
	require.EqualValues(t, 2, calls.Load())
}

func TestDeliver_RetriesServerErrors(t *testing.T) {
	srv, calls := statusServer(t, http.StatusInternalServerError)
	sleeps := &recordedSleeps{}
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithSleep(sleeps.sleep))

	require.False(t, d.Deliver(context.Background(), targetURL, testPayload("rule-1")))
	require.EqualValues(t, 3, calls.Load())

	delays := sleeps.all()
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
	for i := 1; i < len(delays); i++ {
		require.Greater(t, delays[i], delays[i-1])
	}
	require.Zero(t, d.tracked())
}

func TestDeliver_RecoversOnRetry(t *testing.T) {
	srv, calls := statusServer(t, http.StatusBadGateway, http.StatusOK)
	sleeps := &recordedSleeps{}
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithSleep(sleeps.sleep))

	require.True(t, d.Deliver(context.Background(), targetURL, testPayload("rule-1")))
	require.EqualValues(t, 2, calls.Load())
	require.Equal(t, []time.Duration{time.Second}, sleeps.all())
}

func TestDeliver_ClientErrorIsTerminal(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusTooManyRequests} {
		srv, calls := statusServer(t, status)
		sleeps := &recordedSleeps{}
		d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithSleep(sleeps.sleep))

		require.False(t, d.Deliver(context.Background(), targetURL, testPayload("rule-1")), status)
		require.EqualValues(t, 1, calls.Load(), status)
		require.Empty(t, sleeps.all(), status)
	}
}

func TestDeliver_AttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	sleeps := &recordedSleeps{}
	d := NewDispatcher(testSecret,
		WithHTTPClient(routeTo(srv)),
		WithSleep(sleeps.sleep),
		WithAttemptTimeout(100*time.Millisecond),
	)

	require.True(t, d.Deliver(context.Background(), targetURL, testPayload("rule-1")))
	require.EqualValues(t, 2, calls.Load())
}

func TestDeliver_CancelledDuringBackoff(t *testing.T) {
	srv, calls := statusServer(t, http.StatusServiceUnavailable)
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithRetry(3, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for calls.Load() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
	}()

	require.False(t, d.Deliver(ctx, targetURL, testPayload("rule-1")))
	require.EqualValues(t, 1, calls.Load())
}

func TestDeliver_BlockedDestination(t *testing.T) {
	srv, calls := statusServer(t, http.StatusOK)
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)))

	for _, u := range []string{"http://127.0.0.1/x", "http://10.0.0.5/x", "ftp://hooks.example.com/x", "http://metadata.internal/x"} {
		require.False(t, d.Deliver(context.Background(), u, testPayload("rule-1")), u)
	}
	require.Zero(t, calls.Load())
}

func TestDeliver_DebounceMapIsBounded(t *testing.T) {
	srv, _ := statusServer(t, http.StatusOK)
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDispatcher(testSecret,
		WithHTTPClient(routeTo(srv)),
		WithClock(clock.Now),
		WithDebounce(time.Minute, 2),
	)
	ctx := context.Background()

	for _, rule := range []string{"a", "b", "c"} {
		require.True(t, d.Deliver(ctx, targetURL, testPayload(rule)))
		clock.Advance(time.Second)
	}
	require.Equal(t, 2, d.tracked())

	// "a" was the oldest and got evicted, "c" is still debounced
	require.True(t, d.Deliver(ctx, targetURL, testPayload("a")))
	require.False(t, d.Deliver(ctx, targetURL, testPayload("c")))
}

func TestDeliver_ConcurrentRulesAreSafe(t *testing.T) {
	srv, calls := statusServer(t, http.StatusOK)
	d := NewDispatcher(testSecret, WithHTTPClient(routeTo(srv)), WithRateLimit(1000, 100))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Deliver(context.Background(), targetURL, testPayload(string(rune('a'+i))))
		}()
	}
	wg.Wait()
	require.EqualValues(t, 20, calls.Load())
	require.Equal(t, 20, d.tracked())
}

func TestSafeClientRefusesInternalDial(t *testing.T) {
	require.ErrorIs(t, dialControl("tcp", "127.0.0.1:80", nil), ErrBlockedDestination)
	require.ErrorIs(t, dialControl("tcp", "[::1]:443", nil), ErrBlockedDestination)
	require.ErrorIs(t, dialControl("tcp", "169.254.169.254:80", nil), ErrBlockedDestination)
	require.NoError(t, dialControl("tcp", "93.184.216.34:443", nil))

	// A loopback test server is unreachable through the safe client
	srv, calls := statusServer(t, http.StatusOK)
	resp, err := NewSafeClient().Get(srv.URL)
	if resp != nil {
		resp.Body.Close()
	}
	require.ErrorIs(t, err, ErrBlockedDestination)
	require.Zero(t, calls.Load())
}
