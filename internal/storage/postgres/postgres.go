package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared connection pool behind every Postgres store.
type Pool struct {
	*pgxpool.Pool
}

// PoolOptions overrides pool sizing. Zero fields leave the DSN or pgxpool
// defaults in place.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// NewPool parses dsn, applies opts in order and pings the server before
// returning.
func NewPool(ctx context.Context, dsn string, opts ...PoolOptions) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	for _, o := range opts {
		cfg.MaxConns = orDefault(o.MaxConns, cfg.MaxConns)
		cfg.MinConns = orDefault(o.MinConns, cfg.MinConns)
	}

	raw, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := raw.Ping(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", cfg.ConnConfig.Host, err)
	}
	return &Pool{Pool: raw}, nil
}

func orDefault(v, def int32) int32 {
	if v > 0 {
		return v
	}
	return def
}

// inTx runs fn in one transaction. A returned error or panic rolls back.
func (p *Pool) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, p.Pool, fn)
}

// SQLSTATE codes the stores translate into storage errors.
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
)

func sqlstate(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isDuplicateKeyError(err error) bool { return sqlstate(err) == sqlstateUniqueViolation }

// isForeignKeyError reports a reference to a missing parent row.
func isForeignKeyError(err error) bool { return sqlstate(err) == sqlstateForeignKeyViolation }

func isNotFoundError(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
