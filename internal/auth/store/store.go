package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx-scoped Store can't open a second transaction.
type Store interface {
	Users() Users
	Nonces() Nonces
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// UpsertUserByWallet inserts u unless the wallet already exists, and
	// returns the stored row either way.
	UpsertUserByWallet(ctx context.Context, u domain.User) (domain.User, error)

	// GetUserByWallet returns ErrNotFound for unknown wallets.
	GetUserByWallet(ctx context.Context, wallet string) (domain.User, error)
}

type Nonces interface {
	// CreateNonce stores a freshly issued nonce (by hash).
	CreateNonce(ctx context.Context, n domain.Nonce) error

	// GetNonceByHash looks a nonce up by fingerprint.
	GetNonceByHash(ctx context.Context, hash string) (domain.Nonce, error)

	// ClaimNonce marks the nonce used by wallet in a single conditional
	// update. Only an unused nonce with expires_at > now matches; anything
	// else returns ErrNotFound and leaves the row untouched.
	ClaimNonce(ctx context.Context, hash, wallet string, now time.Time) (domain.Nonce, error)

	// DeleteExpiredNonces removes up to limit nonces with expires_at <= now.
	DeleteExpiredNonces(ctx context.Context, now time.Time, limit int) (int64, error)

	// DeleteStaleNonces removes expired nonces and used nonces created
	// before cutoff.
	DeleteStaleNonces(ctx context.Context, now, cutoff time.Time) (int64, error)
}

type Sessions interface {
	// CreateSession inserts a session. Duplicate JTIs return ErrAlreadyExists.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByJTI returns ErrNotFound for unknown JTIs.
	GetSessionByJTI(ctx context.Context, jti string) (domain.Session, error)

	// TouchSession bumps last_active_at.
	TouchSession(ctx context.Context, jti string, at time.Time) error

	// RevokeSession flips revoked on. It is idempotent; unknown JTIs return
	// ErrNotFound.
	RevokeSession(ctx context.Context, jti string) error

	// DeleteStaleSessions removes sessions that expired before cutoff and
	// revoked sessions issued before cutoff.
	DeleteStaleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}
