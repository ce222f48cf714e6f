package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubPool stands in for pgxpool. Unset hooks behave like an empty database and
// every statement is recorded in sql.
type stubPool struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	beginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)

	sql []string
}

func (s *stubPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.sql = append(s.sql, query)
	if s.queryRowFunc == nil {
		return &stubRow{scan: func(...any) error { return pgx.ErrNoRows }}
	}
	return s.queryRowFunc(ctx, query, args...)
}

func (s *stubPool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.sql = append(s.sql, query)
	if s.queryFunc == nil {
		return &stubRows{}, nil
	}
	return s.queryFunc(ctx, query, args...)
}

func (s *stubPool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.sql = append(s.sql, query)
	if s.execFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.execFunc(ctx, query, args...)
}

func (s *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if s.beginTxFunc == nil {
		return nil, errors.New("stub pool: transactions unavailable")
	}
	return s.beginTxFunc(ctx, txOptions)
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r *stubRow) Scan(dest ...any) error { return r.scan(dest...) }

// stubRows replays one scan function per row, then reports err.
type stubRows struct {
	scans  []func(dest ...any) error
	err    error
	cursor int
	closed bool
}

func (r *stubRows) Next() bool {
	if r.closed || r.err != nil || r.cursor >= len(r.scans) {
		r.closed = true
		return false
	}
	r.cursor++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.cursor == 0 || r.closed {
		return fmt.Errorf("stub rows: scan without a current row (cursor %d)", r.cursor)
	}
	return r.scans[r.cursor-1](dest...)
}

func (r *stubRows) Close()                                       { r.closed = true }
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }
