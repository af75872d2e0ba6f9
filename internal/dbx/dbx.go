// Package dbx holds the minimal database/sql surface shared by
// repositories. Both *sql.DB and *sql.Tx satisfy DBTX, so the same
// repository code runs inside and outside transactions (and against
// sqlmock in tests).
package dbx

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
