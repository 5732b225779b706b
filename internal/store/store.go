// Package store holds the PostgreSQL plumbing shared by the repositories:
// pool setup, the goqu dialect and error classification.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIntegrityViolation is returned when a write breaks a uniqueness or
// referential constraint.
var ErrIntegrityViolation = errors.New("integrity violation")

// Dialect builds the SQL for every repository.
var Dialect = goqu.Dialect("postgres")

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Open creates a pool for dsn and checks that the database answers.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}
	return pool, nil
}

// Classify turns constraint failures into ErrIntegrityViolation, keeping the
// driver error as the cause. Other errors are returned unchanged.
func Classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeForeignKeyViolation:
			return errors.Join(ErrIntegrityViolation, fmt.Errorf("%s: %w", pgErr.ConstraintName, err))
		}
	}
	return err
}

// RedactDSN hides the credentials of a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
