package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// RepoExtension is satisfied by the pool and by an open pgx.Tx, so every
// repository call can join the caller's unit of work. A nil extension means
// "use the pool".
type RepoExtension interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the pool surface the repositories need: plain queries plus Begin.
// *pgxpool.Pool and pgxmock pools both satisfy it.
type DB interface {
	RepoExtension
	Begin(ctx context.Context) (pgx.Tx, error)
}
