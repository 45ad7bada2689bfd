package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite/gen"
)

type noncesRepo struct {
	q *gen.Queries
}

func (r *noncesRepo) CreateNonce(ctx context.Context, n domain.Nonce) error {
	err := r.q.CreateNonce(ctx, gen.CreateNonceParams{
		ID:        n.ID,
		NonceHash: n.Hash,
		CreatedAt: toMillis(n.CreatedAt),
		ExpiresAt: toMillis(n.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *noncesRepo) GetNonceByHash(ctx context.Context, hash string) (domain.Nonce, error) {
	row, err := r.q.GetNonceByHash(ctx, hash)
	if err != nil {
		return domain.Nonce{}, mapNotFound(err)
	}
	return mapNonce(row), nil
}

func (r *noncesRepo) ClaimNonce(ctx context.Context, hash, wallet string, now time.Time) (domain.Nonce, error) {
	row, err := r.q.ClaimNonce(ctx, gen.ClaimNonceParams{
		UsedBy:    mapStringNull(wallet),
		UsedAt:    sql.NullInt64{Int64: toMillis(now), Valid: true},
		NonceHash: hash,
		ExpiresAt: toMillis(now),
	})
	if err != nil {
		return domain.Nonce{}, mapNotFound(err)
	}
	return mapNonce(row), nil
}

func (r *noncesRepo) DeleteExpiredNonces(ctx context.Context, now time.Time, limit int) (int64, error) {
	return r.q.DeleteExpiredNonces(ctx, gen.DeleteExpiredNoncesParams{
		ExpiresAt: toMillis(now),
		Limit:     int64(limit),
	})
}

func (r *noncesRepo) DeleteStaleNonces(ctx context.Context, now, cutoff time.Time) (int64, error) {
	return r.q.DeleteStaleNonces(ctx, gen.DeleteStaleNoncesParams{
		ExpiresAt: toMillis(now),
		CreatedAt: toMillis(cutoff),
	})
}

func mapNonce(row gen.AuthNonce) domain.Nonce {
	return domain.Nonce{
		ID:        row.ID,
		Hash:      row.NonceHash,
		CreatedAt: fromMillis(row.CreatedAt),
		ExpiresAt: fromMillis(row.ExpiresAt),
		Used:      row.Used,
		UsedBy:    mapNullString(row.UsedBy),
		UsedAt:    mapNullMillisPtr(row.UsedAt),
	}
}
