package authsdk

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Session is an authenticated bearer token. Tokens are not refreshed; sign
// in again once ExpiresAt passes.
type Session struct {
	client *SDKClient

	token     string
	wallet    string
	expiresAt time.Time
}

func (s *Session) Token() string        { return s.token }
func (s *Session) Wallet() string       { return s.wallet }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// Expired reports whether the token has passed its expiry.
func (s *Session) Expired() bool {
	return !time.Now().Before(s.expiresAt)
}

// GetSession fetches the session from the server, which also marks it active.
func (s *Session) GetSession(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := s.call(ctx, http.MethodGet, "/v1/auth/session", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session. Later calls with this token fail with
// ErrInvalidToken.
func (s *Session) Logout(ctx context.Context) error {
	var out LogoutResponse
	if err := s.call(ctx, http.MethodDelete, "/v1/auth/session", nil, &out, http.StatusOK); err != nil {
		return err
	}
	if !out.Success {
		return errors.New("logout was not acknowledged")
	}
	return nil
}

// Cleanup runs a retention pass now.
func (s *Session) Cleanup(ctx context.Context) (*CleanupResponse, error) {
	var out CleanupResponse
	if err := s.call(ctx, http.MethodPost, "/v1/cleanup", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notify queues an alert for webhook delivery.
func (s *Session) Notify(ctx context.Context, n AlertNotification) (*NotifyResponse, error) {
	var out NotifyResponse
	if err := s.call(ctx, http.MethodPost, "/v1/alerts/notify", n, &out, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) call(ctx context.Context, method, path string, in, out any, want int) error {
	return s.client.call(ctx, method, path, s.token, in, out, want)
}
