package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite/gen"
)

type sessionsRepo struct {
	q *gen.Queries
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	err := r.q.CreateSession(ctx, gen.CreateSessionParams{
		ID:            s.ID,
		Jti:           s.JTI,
		UserID:        s.UserID,
		WalletAddress: s.Wallet,
		IssuedAt:      toMillis(s.IssuedAt),
		ExpiresAt:     toMillis(s.ExpiresAt),
		LastActiveAt:  toMillis(s.LastActiveAt),
		UserAgent:     mapStringNull(s.UserAgent),
		IpAddress:     mapStringNull(s.IPAddress),
	})
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByJTI(ctx context.Context, jti string) (domain.Session, error) {
	row, err := r.q.GetSessionByJTI(ctx, jti)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return mapSession(row), nil
}

func (r *sessionsRepo) TouchSession(ctx context.Context, jti string, at time.Time) error {
	n, err := r.q.TouchSession(ctx, gen.TouchSessionParams{
		LastActiveAt: toMillis(at),
		Jti:          jti,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, jti string) error {
	n, err := r.q.RevokeSession(ctx, jti)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteStaleSessions(ctx, gen.DeleteStaleSessionsParams{
		ExpiresAt: toMillis(cutoff),
		IssuedAt:  toMillis(cutoff),
	})
}

func mapSession(row gen.UserSession) domain.Session {
	return domain.Session{
		ID:           row.ID,
		JTI:          row.Jti,
		UserID:       row.UserID,
		Wallet:       row.WalletAddress,
		IssuedAt:     fromMillis(row.IssuedAt),
		ExpiresAt:    fromMillis(row.ExpiresAt),
		LastActiveAt: fromMillis(row.LastActiveAt),
		Revoked:      row.Revoked,
		UserAgent:    mapNullString(row.UserAgent),
		IPAddress:    mapNullString(row.IpAddress),
	}
}
