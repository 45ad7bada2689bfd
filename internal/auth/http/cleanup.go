package http

import (
	"net/http"

	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// CleanupHandler serves POST /v1/cleanup.
type CleanupHandler struct {
	Housekeeping *service.HousekeepingService
}

// ServeHTTP godoc
//
//	@Summary		Run retention cleanup
//	@Description	Deletes expired nonces and stale sessions now instead of waiting for the next scheduled pass.
//	@Tags			Maintenance
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.CleanupResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		500	{object}	authsdk.ErrorResponse
//	@Router			/v1/cleanup [post].
func (h *CleanupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Housekeeping.RunOnce(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("cleanup failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.CleanupResponse{
		Cleaned: res.Total(),
		Details: authsdk.CleanupDetails{
			Nonces:   res.Nonces,
			Sessions: res.Sessions,
		},
	})
}
