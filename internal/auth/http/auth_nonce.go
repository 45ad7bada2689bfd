package http

import (
	"net/http"

	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// NonceHandler serves GET /v1/auth/nonce.
type NonceHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Issue a sign-in nonce
//	@Description	Returns a single-use nonce to embed in the sign-in message. It expires after five minutes.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.NonceResponse
//	@Failure		429	{object}	authsdk.ErrorResponse	"rate limit exceeded"
//	@Failure		500	{object}	authsdk.ErrorResponse
//	@Header			200	{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/nonce [get].
func (h *NonceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch, err := h.AuthService.IssueChallenge(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("issue nonce failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.NonceResponse{
		Nonce:     ch.Nonce,
		ExpiresAt: ch.ExpiresAt,
	})
}
