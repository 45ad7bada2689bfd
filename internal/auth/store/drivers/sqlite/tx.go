package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite/gen"
)

// ErrNestedTx is returned when a transaction is opened on a Tx-scoped store.
var ErrNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore scopes every repository to one *sql.Tx.
type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

var _ store.Tx = (*txStore)(nil)

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: gen.New(tx)}
}

func (t *txStore) Users() store.Users       { return &usersRepo{q: t.q} }
func (t *txStore) Nonces() store.Nonces     { return &noncesRepo{q: t.q} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{q: t.q} }

func (t *txStore) Commit() error { return t.tx.Commit() }

// Rollback after Commit is a harmless sql.ErrTxDone.
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, ErrNestedTx }

// WithTx joins the open transaction. The outer caller still decides whether
// it commits.
func (t *txStore) WithTx(_ context.Context, fn func(tx store.Tx) error) error {
	return fn(t)
}

// Close is a no-op; the parent Store owns the connection.
func (t *txStore) Close() error { return nil }

// Ping is a no-op, the transaction already holds a live connection.
func (t *txStore) Ping(context.Context) error { return nil }

// ApplyMigrations always runs on the root Store before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }
