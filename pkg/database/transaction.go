package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type txContextKey string

const txStatusKey = txContextKey("txStatus")
const txKey = txContextKey("tx")

// Tx is the transaction surface the repositories use. Commit/Rollback
// are no-ops on a transaction owned by an outer caller via the context,
// so nested repository calls compose into one unit of work.
type Tx interface {
	IsOpen() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	Rebind(query string) string
}

type transaction struct {
	*sqlx.Tx
	logger   ectologger.Logger
	isClosed bool
}

// NewTx wraps an open sqlx transaction.
func NewTx(tx *sqlx.Tx, logger ectologger.Logger) Tx {
	return &transaction{Tx: tx, logger: logger}
}

// GetTx returns the transaction already open on the context, or begins a
// new one and attaches it. The caller that began the transaction is the
// one whose Commit/Rollback takes effect.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	ctxTx, ok := ctx.Value(txKey).(Tx)
	if ok && ctxTx != nil && ctxTx.IsOpen() {
		if status, ok := ctx.Value(txStatusKey).(string); ok && status == "open" {
			return ctx, ctxTx, nil
		}
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Errorf("error while beginning transaction")
		return ctx, nil, fmt.Errorf("error while beginning transaction")
	}

	newTx := NewTx(tx, logger)
	ctx = context.WithValue(ctx, txStatusKey, "open")
	ctx = context.WithValue(ctx, txKey, newTx)
	return ctx, newTx, nil
}

func (t *transaction) IsOpen() bool {
	return !t.isClosed
}

func (t *transaction) Rollback(ctx context.Context) error {
	if t.isClosed {
		return nil
	}
	if status, ok := ctx.Value(txStatusKey).(string); ok && status == "open" {
		return nil // owned by an outer caller
	}

	if err := t.Tx.Rollback(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while rolling back transaction")
		return fmt.Errorf("error while rolling back transaction")
	}
	t.isClosed = true
	return nil
}

func (t *transaction) Commit(ctx context.Context) error {
	if t.isClosed {
		return nil
	}

	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while committing transaction")
		return fmt.Errorf("error while committing transaction")
	}
	t.isClosed = true
	return nil
}
