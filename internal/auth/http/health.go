package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/candor/pkg/authsdk"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// healthProbeTimeout bounds each dependency check in /readyz.
const healthProbeTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the probe endpoints.
type HealthHandler struct {
	StartTime time.Time
	Version   string

	Database Pinger
	// Redis is nil when the service runs without Redis.
	Redis         Pinger
	AlertsBackend string
}

func (h *HealthHandler) base(status string) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.StartTime).Round(time.Second).String(),
		Version: h.Version,
	}
}

// HandleLivez godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.base("ok"))
}

// HandleReadyz godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, the database and Redis status and which alert transport is in use
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := &authsdk.HealthChecks{
		Database: probe(r.Context(), "database", h.Database),
		Alerts:   h.AlertsBackend,
	}
	if h.Redis != nil {
		checks.Redis = probe(r.Context(), "redis", h.Redis)
	}
	if checks.Alerts == "" {
		checks.Alerts = "disabled"
	}

	resp := h.base("ok")
	resp.Checks = checks

	code := http.StatusOK
	if checks.Database != "ok" || (h.Redis != nil && checks.Redis != "ok") {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, code, resp)
}

// probe reports "ok" or "error". The cause is logged, never returned to the
// unauthenticated caller.
func probe(ctx context.Context, name string, p Pinger) string {
	pctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	if err := p.Ping(pctx); err != nil {
		slogx.FromContext(ctx).Warn("readiness check failed", "dependency", name, "error", err)
		return "error"
	}
	return "ok"
}
