package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// Authenticator resolves a raw bearer token into a live principal.
type Authenticator interface {
	AuthenticateBearer(ctx context.Context, token string) (Principal, error)
}

// AuthnMiddleware rejects requests without a valid session-backed bearer token.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := BearerToken(r)
			if raw == "" {
				WriteBearerError(w, "missing bearer token")
				return
			}

			p, err := a.AuthenticateBearer(ctx, raw)
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)
				WriteBearerError(w, "invalid or expired session")
				return
			}

			// Inject into context for downstream handlers.
			ctx = ContextWithPrincipal(ctx, p)
			ctx = slogx.With(ctx, "wallet", p.Wallet, "session_id", p.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriteBearerError writes an RFC 6750-compliant 401 with a JSON body.
func WriteBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
