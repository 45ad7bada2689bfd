package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/pkg/cryptox"
	"github.com/aussiebroadwan/candor/pkg/idx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

const (
	DefaultNonceTTL = 5 * time.Minute

	// expiredNonceBatch bounds the opportunistic cleanup done on each Issue.
	expiredNonceBatch = 500
)

// NonceService issues and redeems single-use challenge nonces.
type NonceService struct {
	Store store.Store
	TTL   time.Duration
	Now   func() time.Time
}

func (s *NonceService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *NonceService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultNonceTTL
}

// Issue stores a fresh nonce and returns it with its raw Value populated.
// Only the fingerprint is persisted.
func (s *NonceService) Issue(ctx context.Context) (domain.Nonce, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	if n, err := s.Store.Nonces().DeleteExpiredNonces(ctx, now, expiredNonceBatch); err != nil {
		l.Warn("failed to delete expired nonces", slog.Any("err", err))
	} else if n > 0 {
		l.Debug("deleted expired nonces", slog.Int64("count", n))
	}

	value, hash, err := cryptox.NewNonce()
	if err != nil {
		return domain.Nonce{}, fmt.Errorf("generate nonce: %w", err)
	}

	nonce := domain.Nonce{
		ID:        idx.NewAt(now).String(),
		Value:     value,
		Hash:      hash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Store.Nonces().CreateNonce(ctx, nonce); err != nil {
		return domain.Nonce{}, fmt.Errorf("store nonce: %w", err)
	}
	return nonce, nil
}

// Redeem atomically marks value as used by wallet. Exactly one concurrent
// caller succeeds; the rest get ErrNonceUsed.
func (s *NonceService) Redeem(ctx context.Context, value, wallet string) (domain.Nonce, error) {
	if value == "" {
		return domain.Nonce{}, ErrNonceNotFound
	}

	now := s.now()
	hash := cryptox.FingerprintToken(value)

	nonce, err := s.Store.Nonces().ClaimNonce(ctx, hash, wallet, now)
	if err == nil {
		return nonce, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Nonce{}, fmt.Errorf("claim nonce: %w", err)
	}

	// Work out why for the logs
	existing, err := s.Store.Nonces().GetNonceByHash(ctx, hash)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Nonce{}, ErrNonceNotFound
	case err != nil:
		return domain.Nonce{}, fmt.Errorf("lookup nonce: %w", err)
	case existing.Used:
		return domain.Nonce{}, ErrNonceUsed
	case existing.Expired(now):
		return domain.Nonce{}, ErrNonceExpired
	default:
		return domain.Nonce{}, ErrNonceUsed
	}
}
