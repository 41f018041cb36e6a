// Package dbx holds the small database plumbing shared by every
// repository: the DBTX query interface and a transaction wrapper, so a
// repository never has to know whether it runs on the pool or inside a
// transaction someone else opened.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface repositories are built against. Both *sql.DB
// and *sql.Tx satisfy it, which is what lets WithTx hand a transactional
// handle to the same repository constructors.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit when fn returns nil, rollback
// when it returns an error or panics (the panic is rethrown after rollback).
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := files.NewPostgresRepository(tx)
//	    // ...
//	    return nil
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
