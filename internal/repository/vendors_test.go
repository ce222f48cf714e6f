package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
)

type stubTx struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	committed    bool
	rolledBack   bool
}

func (s *stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return s, nil }
func (s *stubTx) Commit(ctx context.Context) error          { s.committed = true; return nil }
func (s *stubTx) Rollback(ctx context.Context) error {
	if !s.committed {
		s.rolledBack = true
	}
	return nil
}
func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}
func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (s *stubTx) LargeObjects() pgx.LargeObjects                            { return pgx.LargeObjects{} }
func (s *stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("prepare not implemented")
}
func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("exec not implemented")
}
func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}
func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.queryRowFunc(ctx, sql, args...)
}
func (s *stubTx) Conn() *pgx.Conn { return nil }

func vendorRow(name, location string) func(dest ...any) error {
	return func(dest ...any) error {
		now := time.Now()
		*dest[0].(*uuid.UUID) = uuid.New()
		*dest[1].(*string) = name
		*dest[2].(*string) = "VENUE"
		*dest[3].(*string) = location
		*dest[4].(*sql.NullString) = sql.NullString{String: "Hunter Valley", Valid: true}
		*dest[5].(*sql.NullString) = sql.NullString{}
		*dest[6].(*sql.NullInt64) = sql.NullInt64{Int64: 150, Valid: true}
		*dest[7].(*sql.NullInt64) = sql.NullInt64{Int64: 800000, Valid: true}
		*dest[8].(*sql.NullInt64) = sql.NullInt64{}
		*dest[9].(*[]string) = []string{"Rustic"}
		*dest[10].(*string) = "Converted barn"
		*dest[11].(*[]string) = []string{"ceremony", "reception"}
		*dest[12].(*sql.NullFloat64) = sql.NullFloat64{Float64: 4.8, Valid: true}
		*dest[13].(*sql.NullString) = sql.NullString{String: "hello@barn.example", Valid: true}
		*dest[14].(*sql.NullString) = sql.NullString{}
		*dest[15].(*sql.NullString) = sql.NullString{}
		*dest[16].(*time.Time) = now
		*dest[17].(*time.Time) = now
		return nil
	}
}

func TestPGXVendorsRepository_FindByLocation(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXVendorsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery = query
			gotArgs = args
			return &stubRows{scans: []func(dest ...any) error{
				vendorRow("Hunter Barn", "Newcastle"),
				vendorRow("Pokolbin Estate", "Pokolbin"),
			}}, nil
		},
	}}

	vendors, err := repo.FindByLocation(context.Background(), "hunter_100%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vendors) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(vendors))
	}
	if !strings.Contains(gotQuery, "ORDER BY id") {
		t.Fatalf("expected stable ordering by id, got %s", gotQuery)
	}
	if len(gotArgs) != 1 || gotArgs[0] != `%hunter\_100\%%` {
		t.Fatalf("expected escaped contains pattern, got %v", gotArgs)
	}

	v := vendors[0]
	if v.Category != entity.CategoryVenue || v.Region == nil || *v.Region != "Hunter Valley" || v.Suburb != nil {
		t.Fatalf("unexpected vendor: %+v", v)
	}
	if v.MaxGuests == nil || *v.MaxGuests != 150 || v.PriceMin == nil || v.PriceMax != nil {
		t.Fatalf("unexpected capacity/prices: %+v", v)
	}
	if v.Rating == nil || *v.Rating != 4.8 || v.Email == nil {
		t.Fatalf("unexpected rating/contact: %+v", v)
	}
}

func TestPGXVendorsRepository_FindByLocationEmpty(t *testing.T) {
	repo := &PGXVendorsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}}

	vendors, err := repo.FindByLocation(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(vendors) != 0 {
		t.Fatalf("expected no vendors, got %d", len(vendors))
	}
}

func TestPGXVendorsRepository_FindByLocationError(t *testing.T) {
	dbErr := errors.New("connection reset")
	repo := &PGXVendorsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return nil, dbErr
		},
	}}

	if _, err := repo.FindByLocation(context.Background(), "Sydney"); !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPGXVendorsRepository_ListFilters(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXVendorsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery = query
			gotArgs = args
			return &stubRows{}, nil
		},
	}}

	minRating := 4.5
	_, err := repo.List(context.Background(), dto.VendorFilter{
		Q:         "barn",
		Category:  "venue",
		Location:  "Hunter",
		MinRating: &minRating,
		Page:      3,
		PerPage:   500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, fragment := range []string{"name ILIKE $1", "category = $3", "region ILIKE $4", "rating >= $5", "LIMIT $6 OFFSET $7", "ORDER BY rating DESC NULLS LAST, name ASC"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("expected %q in query: %s", fragment, gotQuery)
		}
	}
	if gotArgs[2] != "VENUE" {
		t.Fatalf("expected normalised category, got %v", gotArgs[2])
	}
	if gotArgs[5] != 100 || gotArgs[6] != 200 {
		t.Fatalf("expected per_page capped at 100 and offset 200, got %v/%v", gotArgs[5], gotArgs[6])
	}
}

func TestPGXVendorsRepository_GetByID(t *testing.T) {
	repo := &PGXVendorsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{scans: []func(dest ...any) error{vendorRow("Hunter Barn", "Newcastle")}}, nil
		},
	}}
	vendor, err := repo.GetByID(context.Background(), uuid.New())
	if err != nil || vendor.Name != "Hunter Barn" {
		t.Fatalf("unexpected result: %+v, %v", vendor, err)
	}

	repo.pool = &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestPGXVendorsRepository_GetByIDsEmpty(t *testing.T) {
	repo := &PGXVendorsRepository{}
	vendors, err := repo.GetByIDs(context.Background(), nil)
	if err != nil || vendors != nil {
		t.Fatalf("expected nil result without ids, got %v, %v", vendors, err)
	}
}

func TestPGXVendorsRepository_BulkUpsertEmpty(t *testing.T) {
	repo := &PGXVendorsRepository{}
	res, err := repo.BulkUpsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 {
		t.Fatalf("expected zero summary, got %+v", res)
	}
}

func TestPGXVendorsRepository_BulkUpsert(t *testing.T) {
	results := []bool{true, false, true}
	call := 0
	tx := &stubTx{queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
		if len(args) != 15 {
			t.Fatalf("expected 15 args, got %d", len(args))
		}
		inserted := results[call]
		call++
		return &stubRow{scan: func(dest ...any) error {
			*dest[0].(*bool) = inserted
			return nil
		}}
	}}
	repo := &PGXVendorsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	records := []BulkUpsertVendorInput{
		{Name: "A", Category: entity.CategoryVenue, Location: "Sydney"},
		{Name: "B", Category: entity.CategoryFlorist, Location: "Sydney"},
		{Name: "C", Category: entity.CategoryOther, Location: "Perth"},
	}
	res, err := repo.BulkUpsert(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 2 || res.Updated != 1 || res.Total != 3 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if !tx.committed || tx.rolledBack {
		t.Fatalf("expected commit without rollback")
	}
}

func TestPGXVendorsRepository_BulkUpsertRollsBack(t *testing.T) {
	tx := &stubTx{queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
		return &stubRow{scan: func(dest ...any) error { return errors.New("check constraint") }}
	}}
	repo := &PGXVendorsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	if _, err := repo.BulkUpsert(context.Background(), []BulkUpsertVendorInput{{Name: "A", Location: "X"}}); err == nil {
		t.Fatalf("expected error")
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("expected rollback")
	}
}

func TestColumnHelpers(t *testing.T) {
	blank, region := "", "Hunter Valley"
	rating, guests := 4.8, 180
	var cents int64 = 120000

	tests := map[string]struct {
		got  any
		want any
	}{
		"nil text":     {got: nullableText(nil), want: nil},
		"blank text":   {got: nullableText(&blank), want: nil},
		"region":       {got: nullableText(&region), want: "Hunter Valley"},
		"nil rating":   {got: nullable[float64](nil), want: nil},
		"rating":       {got: nullable(&rating), want: 4.8},
		"max guests":   {got: nullable(&guests), want: 180},
		"price cents":  {got: nullable(&cents), want: int64(120000)},
		"escaped like": {got: containsPattern("a_b%"), want: `%a\_b\%%`},
		"match all":    {got: containsPattern(""), want: "%%"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, tt.got)
			}
		})
	}

	if styles := textArray(nil); styles == nil || len(styles) != 0 {
		t.Fatalf("expected an empty styles array, got %#v", styles)
	}
}
