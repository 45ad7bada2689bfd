package http

import (
	"net/http"

	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/httpx"
)

const maxVerifyBody = 16 << 10

// VerifyHandler serves POST /v1/auth/verify.
type VerifyHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Verify a signed sign-in message
//	@Description	Checks the wallet signature over the sign-in message, redeems its nonce and opens a 24 hour session.
//	@Description	The signature may be a base58 string or a JSON array of bytes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyRequest	true	"Signed message"
//	@Success		200		{object}	authsdk.VerifyResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request or invalid_grant"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_signature"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse
//	@Router			/v1/auth/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Decode the body
	var req authsdk.VerifyRequest
	if err := httpx.DecodeJSON(w, r, maxVerifyBody, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if req.Message == "" || req.PublicKey == "" || len(req.Signature) == 0 {
		errInvalidBody.WriteError(w)
		return
	}

	// 2. Run the handshake
	res, err := h.AuthService.Verify(r.Context(), service.VerifyRequest{
		Message:   req.Message,
		Signature: req.Signature,
		PublicKey: req.PublicKey,
		UserAgent: r.UserAgent(),
		IPAddress: httpx.IPKeyExtractor(r),
	})
	if err != nil {
		writeVerifyError(w, r, err)
		return
	}

	// 3. Hand back the token
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		Token:     res.Token,
		Wallet:    res.Wallet,
		ExpiresAt: res.ExpiresAt,
	})
}
