package sqlite

import (
	"context"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) UpsertUserByWallet(ctx context.Context, u domain.User) (domain.User, error) {
	err := r.q.UpsertUser(ctx, gen.UpsertUserParams{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		CreatedAt:     toMillis(u.CreatedAt),
	})
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUserByWallet(ctx, u.WalletAddress)
}

func (r *usersRepo) GetUserByWallet(ctx context.Context, wallet string) (domain.User, error) {
	row, err := r.q.GetUserByWallet(ctx, wallet)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:            row.ID,
		WalletAddress: row.WalletAddress,
		CreatedAt:     fromMillis(row.CreatedAt),
	}
}
