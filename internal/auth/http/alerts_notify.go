package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/candor/internal/alerting"
	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

const maxNotifyBody = 16 << 10

// NotifyHandler serves POST /v1/alerts/notify.
type NotifyHandler struct {
	Publisher *alerting.Publisher
}

// ServeHTTP godoc
//
//	@Summary		Queue an alert notification
//	@Description	Queues an already fired alert for signed delivery to its webhook. Internal and private addresses are refused.
//	@Tags			Alerts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.AlertNotification	true	"Notification"
//	@Success		202		{object}	authsdk.NotifyResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse
//	@Router			/v1/alerts/notify [post].
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.AlertNotification
	if err := httpx.DecodeJSON(w, r, maxNotifyBody, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	p, _ := httpx.PrincipalFromContext(ctx)
	id, err := h.Publisher.Publish(ctx, alerting.Notification{
		WebhookURL: req.WebhookURL,
		RuleID:     req.RuleID,
		RuleName:   req.RuleName,
		AlertID:    req.AlertID,
		Message:    req.Message,
		Severity:   req.Severity,
		SessionID:  req.SessionID,
		EventID:    req.EventID,
		Wallet:     p.Wallet,
	})
	switch {
	case errors.Is(err, alerting.ErrMissingField):
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
		return
	case errors.Is(err, alerting.ErrBlockedDestination):
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "webhook url not allowed").WriteError(w)
		return
	case err != nil:
		slogx.FromContext(ctx).Error("queue notification failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.NotifyResponse{ID: id, Queued: true})
}
