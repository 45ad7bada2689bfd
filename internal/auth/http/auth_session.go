package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// sessionAuthenticator adapts SessionService to httpx.AuthnMiddleware.
type sessionAuthenticator struct {
	sessions *service.SessionService
}

func (a sessionAuthenticator) AuthenticateBearer(ctx context.Context, token string) (httpx.Principal, error) {
	sess, err := a.sessions.Authenticate(ctx, token)
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{
		Wallet:    sess.Wallet,
		SessionID: sess.JTI,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// SessionHandler serves /v1/auth/session.
type SessionHandler struct {
	SessionService *service.SessionService
}

// HandleGet godoc
//
//	@Summary		Current session
//	@Description	Returns the wallet and expiry behind the bearer token and marks the session active.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.SessionResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Router			/v1/auth/session [get].
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{
		Wallet:    p.Wallet,
		ExpiresAt: p.ExpiresAt,
	})
}

// HandleDelete godoc
//
//	@Summary		Log out
//	@Description	Revokes the session behind the bearer token. Revoking an already revoked session succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.LogoutResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		500	{object}	authsdk.ErrorResponse
//	@Router			/v1/auth/session [delete].
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := httpx.BearerToken(r)
	if token == "" {
		httpx.WriteBearerError(w, "missing bearer token")
		return
	}

	if err := h.SessionService.Logout(ctx, token); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			slogx.FromContext(ctx).Warn("logout rejected", "err", err)
			httpx.WriteBearerError(w, "invalid or expired session")
			return
		}
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{Success: true})
}
