package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxPool is the part of *pgxpool.Pool the vendor, wedding, outreach and user stores use.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const uniqueViolation = "23505"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching value anywhere, with wildcards in value escaped.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// nullable passes the pointed-to value through, or SQL NULL for a nil pointer.
func nullable[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}

// nullableText is nullable for optional text columns, where a blank string is stored as NULL.
func nullableText(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

// textArray keeps text[] columns NOT NULL.
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
