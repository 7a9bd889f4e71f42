package db

import (
	"context"
	"database/sql"
)

// MakeTx begins a transaction, discard is safe to call after commit.
type MakeTx = func(ctx context.Context) (tx *Queries, discard, commit func() error, err error)

func NewMakeTx(database *sql.DB) MakeTx {
	return func(ctx context.Context) (*Queries, func() error, func() error, error) {
		sqltx, err := database.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		return New(sqltx),
			sqltx.Rollback,
			sqltx.Commit,
			nil
	}
}
