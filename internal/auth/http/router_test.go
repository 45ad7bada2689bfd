package http_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/candor/internal/alerting"
	authhttp "github.com/aussiebroadwan/candor/internal/auth/http"
	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/cryptox"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/jwtx"
	"github.com/aussiebroadwan/candor/pkg/siws"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

const testDomain = "candor.dev"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slogx.Discard()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewHMAC([]byte(strings.Repeat("k", 32)), service.Issuer)
	require.NoError(t, err)

	nonces := &service.NonceService{Store: st}
	tokens := &service.TokenService{Codec: codec}

	ps, err := alerting.NewPubSub(nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	r := authhttp.NewRouter(httpx.NewFixedWindowLimiter(), "test", st, logger)
	r.AuthService = &service.AuthService{Store: st, Nonces: nonces, Tokens: tokens, Domain: testDomain}
	r.SessionService = &service.SessionService{Store: st, Tokens: tokens}
	r.Housekeeping = service.NewHousekeepingService(st, logger, time.Hour, service.DefaultRetention)
	r.Alerts = alerting.NewPublisher(ps.Publisher)
	r.AlertsBackend = ps.Backend
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) authsdk.ErrorResponse {
	t.Helper()
	var out authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestNonceEndpoint(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/v1/auth/nonce")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var out authsdk.NonceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Nonce)
	require.WithinDuration(t, time.Now().Add(service.DefaultNonceTTL), out.ExpiresAt, 5*time.Second)
}

func TestSignInSessionAndLogout(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := authsdk.NewSDKClient(srv.URL)
	key := newKey(t)

	sess, err := client.SignIn(ctx, testDomain, key)
	require.NoError(t, err)
	require.Equal(t, cryptox.WalletAddress(key.Public().(ed25519.PublicKey)), sess.Wallet())
	require.False(t, sess.Expired())

	info, err := sess.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, sess.Wallet(), info.Wallet)
	require.WithinDuration(t, sess.ExpiresAt(), info.ExpiresAt, time.Second)

	require.NoError(t, sess.Logout(ctx))
	// Logging out twice is fine
	require.NoError(t, sess.Logout(ctx))

	_, err = sess.GetSession(ctx)
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
}

func TestVerifyAcceptsByteArraySignature(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := authsdk.NewSDKClient(srv.URL)
	key := newKey(t)
	wallet := cryptox.WalletAddress(key.Public().(ed25519.PublicKey))

	nonce, err := client.GetNonce(ctx)
	require.NoError(t, err)

	msg := siws.NewMessage(wallet, nonce.Nonce, testDomain)
	sig := ed25519.Sign(key, []byte(msg))
	ints := make([]int, len(sig))
	for i, b := range sig {
		ints[i] = int(b)
	}

	resp := postJSON(t, srv.URL+"/v1/auth/verify", map[string]any{
		"message":   msg,
		"signature": ints,
		"publicKey": wallet,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out authsdk.VerifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, wallet, out.Wallet)
	require.NotEmpty(t, out.Token)
}

func TestVerifyErrors(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := authsdk.NewSDKClient(srv.URL)
	key := newKey(t)
	wallet := cryptox.WalletAddress(key.Public().(ed25519.PublicKey))

	signed := func(domain string) authsdk.VerifyRequest {
		nonce, err := client.GetNonce(ctx)
		require.NoError(t, err)
		msg := siws.NewMessage(wallet, nonce.Nonce, domain)
		return authsdk.VerifyRequest{Message: msg, Signature: ed25519.Sign(key, []byte(msg)), PublicKey: wallet}
	}

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/v1/auth/verify", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidRequest, decodeError(t, resp).Error)
	})

	t.Run("wrong domain", func(t *testing.T) {
		_, err := client.Verify(ctx, signed("evil.dev"))
		require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
	})

	t.Run("bad signature", func(t *testing.T) {
		req := signed(testDomain)
		req.Signature = ed25519.Sign(newKey(t), []byte(req.Message))
		_, err := client.Verify(ctx, req)
		require.ErrorIs(t, err, authsdk.ErrInvalidSignature)
	})

	t.Run("replayed nonce", func(t *testing.T) {
		req := signed(testDomain)
		_, err := client.Verify(ctx, req)
		require.NoError(t, err)

		_, err = client.Verify(ctx, req)
		require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
	})
}

func TestVerifyRateLimited(t *testing.T) {
	srv := newServer(t)

	var last *http.Response
	for range httpx.VerifyLimit.RequestsPerWindow + 1 {
		last = postJSON(t, srv.URL+"/v1/auth/verify", map[string]any{})
	}
	require.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	require.NotEmpty(t, last.Header.Get("Retry-After"))
	require.Equal(t, authsdk.ErrorCodeRateLimitExceeded, decodeError(t, last).Error)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/auth/session"},
		{http.MethodDelete, "/v1/auth/session"},
		{http.MethodPost, "/v1/cleanup"},
		{http.MethodPost, "/v1/alerts/notify"},
	} {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer not-a-token")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.path)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token", tc.path)
	}
}

func TestCleanupEndpoint(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := authsdk.NewSDKClient(srv.URL)

	sess, err := client.SignIn(ctx, testDomain, newKey(t))
	require.NoError(t, err)

	out, err := sess.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, out.Details.Nonces+out.Details.Sessions, out.Cleaned)
}

func TestNotifyEndpoint(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := authsdk.NewSDKClient(srv.URL)

	sess, err := client.SignIn(ctx, testDomain, newKey(t))
	require.NoError(t, err)

	n := authsdk.AlertNotification{
		WebhookURL: "https://hooks.example.com/candor",
		RuleID:     "rule-1",
		RuleName:   "High spend",
		AlertID:    "alert-1",
		Message:    "Spend exceeded $10",
		Severity:   "warning",
		SessionID:  "session-1",
	}
	out, err := sess.Notify(ctx, n)
	require.NoError(t, err)
	require.True(t, out.Queued)
	require.NotEmpty(t, out.ID)

	n.WebhookURL = "http://169.254.169.254/latest"
	_, err = sess.Notify(ctx, n)
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	n.WebhookURL = "https://hooks.example.com/candor"
	n.RuleID = ""
	_, err = sess.Notify(ctx, n)
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := authsdk.NewSDKClient(srv.URL)

	live, err := client.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "gochannel", ready.Checks.Alerts)
}

func TestReadyzDegraded(t *testing.T) {
	h := &authhttp.HealthHandler{
		StartTime: time.Now(),
		Version:   "test",
		Database:  authhttp.PingFunc(func(context.Context) error { return nil }),
		Redis: authhttp.PingFunc(func(context.Context) error {
			return errors.New("connection refused")
		}),
		AlertsBackend: "redis",
	}

	rec := httptest.NewRecorder()
	h.HandleReadyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := rec.Body.String()
	require.NotContains(t, body, "connection refused")

	var out authsdk.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Equal(t, "degraded", out.Status)
	require.Equal(t, "ok", out.Checks.Database)
	require.Equal(t, "error", out.Checks.Redis)
}
