package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

var (
	errInvalidBody = authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
		"request body must be JSON with message, signature and publicKey")
	errInvalidIdentity = authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
		"invalid public key")
	errMalformedChallenge = authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
		"malformed sign-in message")
	errIdentityMismatch = authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
		"message does not match public key")
	errDomainMismatch = authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
		"message domain mismatch")
)

// writeVerifyError maps sign-in failures onto responses. Anything unexpected
// is logged and reported as a generic server error.
func writeVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIdentity):
		errInvalidIdentity.WriteError(w)
	case errors.Is(err, service.ErrMalformedChallenge):
		errMalformedChallenge.WriteError(w)
	case errors.Is(err, service.ErrIdentityMismatch):
		errIdentityMismatch.WriteError(w)
	case errors.Is(err, service.ErrDomainMismatch):
		errDomainMismatch.WriteError(w)
	case errors.Is(err, service.ErrInvalidOrExpiredNonce):
		authsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrInvalidSignature):
		authsdk.ErrInvalidSignature.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("sign-in failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
