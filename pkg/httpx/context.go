package httpx

import (
	"context"
	"time"
)

type ctxKey string

const (
	CtxKeyWallet    ctxKey = "wallet"
	CtxKeySessionID ctxKey = "session_id"
	CtxKeyPrincipal ctxKey = "principal"
)

// Principal is the authenticated caller behind a bearer token.
type Principal struct {
	Wallet    string
	SessionID string
	ExpiresAt time.Time
}

// ContextWithPrincipal stores p for downstream handlers.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, CtxKeyWallet, p.Wallet)
	ctx = context.WithValue(ctx, CtxKeySessionID, p.SessionID)
	ctx = context.WithValue(ctx, CtxKeyPrincipal, p)
	return ctx
}

// PrincipalFromContext returns the principal set by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}
