package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// SessionService resolves bearer tokens to live sessions.
type SessionService struct {
	Store  store.Store
	Tokens *TokenService
	Now    func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Authenticate returns the session behind token. Every failure is
// ErrUnauthorized, wrapped with its cause.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sess, err := s.Store.Sessions().GetSessionByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, fmt.Errorf("%w: unknown session", ErrUnauthorized)
		}
		return domain.Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	now := s.now()
	if !sess.Valid(now) {
		return domain.Session{}, fmt.Errorf("%w: session revoked or expired", ErrUnauthorized)
	}
	if sess.Wallet != claims.Wallet {
		return domain.Session{}, fmt.Errorf("%w: wallet mismatch", ErrUnauthorized)
	}

	if err := s.Store.Sessions().TouchSession(ctx, sess.JTI, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to touch session", slog.Any("err", err))
	} else {
		sess.LastActiveAt = now
	}
	return sess, nil
}

// Logout revokes the session behind token. Revoking twice is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if err := s.Store.Sessions().RevokeSession(ctx, claims.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown session", ErrUnauthorized)
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	slogx.FromContext(ctx).Info("session revoked", slog.String("wallet", claims.Wallet))
	return nil
}
