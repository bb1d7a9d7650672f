package db

import (
	"context"
	"database/sql"
)

// Database owns the connection shared by the article and image repositories.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}

// Executor is the query surface shared by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Executor = (*sql.DB)(nil)
	_ Executor = (*sql.Tx)(nil)
)
