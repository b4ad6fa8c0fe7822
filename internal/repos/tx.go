package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// RunTx runs fn inside a transaction: every write fn performs commits as one
// unit or rolls back entirely. Store methods that mutate state take the tx so
// stock decrements, number allocation, and order writes share one boundary.
func RunTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
