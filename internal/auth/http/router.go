package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/candor/internal/alerting"
	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/slogx"

	_ "github.com/aussiebroadwan/candor/api/candor" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	limiter      httpx.Limiter
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	SessionService *service.SessionService
	Housekeeping   *service.HousekeepingService

	// Alerts is optional; the notify route is only mounted when set.
	Alerts        *alerting.Publisher
	AlertsBackend string

	// Redis is reported by /readyz when set.
	Redis Pinger
}

func NewRouter(
	limiter httpx.Limiter,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		limiter:      limiter,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMaintenance()
	r.registerAlerts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Candor Authentication Service API
//	@version		0.1.0
//	@description	Wallet sign-in for Candor. A Solana wallet signs a one-time challenge and receives a 24 hour bearer token.
//	@description
//	@description				Tokens are HS256 JWTs backed by a server-side session that can be revoked.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/candor
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(sessionAuthenticator{sessions: r.SessionService})
}

func (r *Router) registerAuth() {
	// GET /nonce - per IP, cheap but writes a row
	r.Mux.Handle("GET /v1/auth/nonce",
		httpx.Chain(&NonceHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.limiter, httpx.NonceLimit),
		),
	)

	// POST /verify - strict per IP, limited before any work is done
	r.Mux.Handle("POST /v1/auth/verify",
		httpx.Chain(&VerifyHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.limiter, httpx.VerifyLimit),
		),
	)

	h := &SessionHandler{SessionService: r.SessionService}

	r.Mux.Handle("GET /v1/auth/session",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RateLimitByWallet(r.limiter, httpx.SessionLimit),
		),
	)

	// Logout verifies the token itself so revoked sessions can still log out
	r.Mux.Handle("DELETE /v1/auth/session",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitByIP(r.limiter, httpx.SessionLimit),
		),
	)
}

func (r *Router) registerMaintenance() {
	r.Mux.Handle("POST /v1/cleanup",
		httpx.Chain(&CleanupHandler{Housekeeping: r.Housekeeping},
			r.authn(),
			httpx.RateLimitByWallet(r.limiter, httpx.SessionLimit),
		),
	)
}

func (r *Router) registerAlerts() {
	if r.Alerts == nil {
		return
	}

	r.Mux.Handle("POST /v1/alerts/notify",
		httpx.Chain(&NotifyHandler{Publisher: r.Alerts},
			r.authn(),
			httpx.RateLimitByWallet(r.limiter, httpx.NotifyLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health checks are not rate limited; probes poll them constantly
	h := &HealthHandler{
		StartTime:     r.startTime,
		Version:       r.buildVersion,
		Database:      r.store,
		Redis:         r.Redis,
		AlertsBackend: r.AlertsBackend,
	}
	r.Mux.HandleFunc("GET /livez", h.HandleLivez)
	r.Mux.HandleFunc("GET /readyz", h.HandleReadyz)
}
