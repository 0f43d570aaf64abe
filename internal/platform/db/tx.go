package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medsched/medsched/internal/platform/apperr"
)

type contextKey string

const txKey contextKey = "db_tx"

// Querier is the subset of pgxpool.Pool (and pgx.Tx) that repositories use.
// Repositories hold a Querier so that reads issued inside a transaction scope
// and plain pool reads go through the same code path.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxManager scopes a function to one database transaction. The transaction
// is carried in the context so repositories participate transparently via
// FromContext; commit happens only if fn returns nil, and the borrowed
// connection is released exactly once on every exit path, including panics.
type TxManager struct {
	pool Beginner
}

func NewTxManager(pool Beginner) *TxManager {
	return &TxManager{pool: pool}
}

// InTx begins a transaction, runs fn with the transaction in the context,
// and commits. Any error from fn (or a panic) triggers rollback; the error
// is returned unchanged so typed errors survive the transaction boundary.
func (m *TxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return apperr.Database("begin transaction", err)
	}
	// Rollback after a successful commit is a no-op (pgx.ErrTxClosed), so a
	// single deferred rollback covers error returns and panics alike.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Database("commit transaction", err)
	}
	return nil
}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// FromContext returns the transaction carried by ctx, or nil when the
// caller is not inside a transaction scope.
func FromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// Conn resolves the Querier a repository should use: the in-flight
// transaction when one is in scope, otherwise the given pool.
func Conn(ctx context.Context, pool Querier) Querier {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
