package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
)

// ErrVendorNotFound is returned when no vendor matches the lookup.
var ErrVendorNotFound = errors.New("vendor not found")

// VendorsRepository describes persistence operations for the vendor catalogue.
type VendorsRepository interface {
	FindByLocation(ctx context.Context, location string) ([]entity.Vendor, error)
	List(ctx context.Context, filter dto.VendorFilter) ([]entity.Vendor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Vendor, error)
	BulkUpsert(ctx context.Context, records []BulkUpsertVendorInput) (BulkUpsertResult, error)
}

// BulkUpsertVendorInput carries one CSV row after parsing and normalisation.
type BulkUpsertVendorInput struct {
	Name            string
	Category        entity.Category
	Location        string
	Region          *string
	Suburb          *string
	MaxGuests       *int
	PriceMin        *int64
	PriceMax        *int64
	Styles          []string
	Description     string
	ServicesOffered []string
	Rating          *float64
	Email           *string
	Phone           *string
	Website         *string
}

// BulkUpsertResult summarises the number of rows inserted or updated.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXVendorsRepository implements VendorsRepository using pgx.
type PGXVendorsRepository struct {
	pool pgxPool
}

// NewPGXVendorsRepository wires a pgx backed repository.
func NewPGXVendorsRepository(pool *pgxpool.Pool) *PGXVendorsRepository {
	return &PGXVendorsRepository{pool: pool}
}

const vendorColumns = `
            id,
            name,
            category,
            location,
            region,
            suburb,
            max_guests,
            price_min,
            price_max,
            COALESCE(styles, '{}'),
            COALESCE(description, ''),
            COALESCE(services_offered, '{}'),
            rating,
            email,
            phone,
            website,
            created_at,
            updated_at
`

// FindByLocation returns every vendor whose location, region or suburb contains the query,
// ignoring case. Rows are ordered by id so equal scores rank the same way on every call.
func (r *PGXVendorsRepository) FindByLocation(ctx context.Context, location string) ([]entity.Vendor, error) {
	query := `SELECT` + vendorColumns + `FROM vendors
        WHERE location ILIKE $1 OR region ILIKE $1 OR suburb ILIKE $1
        ORDER BY id`

	rows, err := r.pool.Query(ctx, query, containsPattern(location))
	if err != nil {
		return nil, fmt.Errorf("find vendors by location: %w", err)
	}
	defer rows.Close()

	return scanVendors(rows)
}

// List retrieves a page of vendors matching the filter, best rated first.
func (r *PGXVendorsRepository) List(ctx context.Context, filter dto.VendorFilter) ([]entity.Vendor, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`SELECT` + vendorColumns + `FROM vendors`)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := containsPattern(filter.Q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", idx))
		args = append(args, string(entity.ParseCategory(filter.Category)))
		idx++
	}
	if filter.Location != "" {
		clauses = append(clauses, fmt.Sprintf("(location ILIKE $%d OR region ILIKE $%d OR suburb ILIKE $%d)", idx, idx, idx))
		args = append(args, containsPattern(filter.Location))
		idx++
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}
	baseQuery.WriteString(" ORDER BY rating DESC NULLS LAST, name ASC")

	page, perPage := normalisePage(filter.Page, filter.PerPage)
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	return scanVendors(rows)
}

// GetByID fetches a single vendor.
func (r *PGXVendorsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT`+vendorColumns+`FROM vendors WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	defer rows.Close()

	vendors, err := scanVendors(rows)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, ErrVendorNotFound
	}
	return &vendors[0], nil
}

// GetByIDs fetches the vendors with the given ids. Unknown ids are silently absent from the result.
func (r *PGXVendorsRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Vendor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT`+vendorColumns+`FROM vendors WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get vendors by id: %w", err)
	}
	defer rows.Close()

	return scanVendors(rows)
}

const bulkUpsertVendorSQL = `
        INSERT INTO vendors (
            name, category, location, region, suburb, max_guests, price_min, price_max,
            styles, description, services_offered, rating, email, phone, website, updated_at
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW())
        ON CONFLICT (name, location) DO UPDATE SET
            category = EXCLUDED.category,
            region = EXCLUDED.region,
            suburb = EXCLUDED.suburb,
            max_guests = EXCLUDED.max_guests,
            price_min = EXCLUDED.price_min,
            price_max = EXCLUDED.price_max,
            styles = EXCLUDED.styles,
            description = EXCLUDED.description,
            services_offered = EXCLUDED.services_offered,
            rating = EXCLUDED.rating,
            email = EXCLUDED.email,
            phone = EXCLUDED.phone,
            website = EXCLUDED.website,
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// BulkUpsert persists a batch of vendors keyed by (name, location) in one transaction.
func (r *PGXVendorsRepository) BulkUpsert(ctx context.Context, records []BulkUpsertVendorInput) (BulkUpsertResult, error) {
	var result BulkUpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start bulk upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, record := range records {
		var inserted bool
		err := tx.QueryRow(ctx, bulkUpsertVendorSQL,
			record.Name,
			string(record.Category),
			record.Location,
			nullableText(record.Region),
			nullableText(record.Suburb),
			nullable(record.MaxGuests),
			nullable(record.PriceMin),
			nullable(record.PriceMax),
			textArray(record.Styles),
			record.Description,
			textArray(record.ServicesOffered),
			nullable(record.Rating),
			nullableText(record.Email),
			nullableText(record.Phone),
			nullableText(record.Website),
		).Scan(&inserted)
		if err != nil {
			return result, fmt.Errorf("bulk upsert vendor %q: %w", record.Name, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk upsert tx: %w", err)
	}

	return result, nil
}

func normalisePage(page, perPage int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func scanVendors(rows pgx.Rows) ([]entity.Vendor, error) {
	var vendors []entity.Vendor
	for rows.Next() {
		var (
			v         entity.Vendor
			category  string
			region    sql.NullString
			suburb    sql.NullString
			maxGuests sql.NullInt64
			priceMin  sql.NullInt64
			priceMax  sql.NullInt64
			rating    sql.NullFloat64
			email     sql.NullString
			phone     sql.NullString
			website   sql.NullString
		)

		err := rows.Scan(
			&v.ID,
			&v.Name,
			&category,
			&v.Location,
			&region,
			&suburb,
			&maxGuests,
			&priceMin,
			&priceMax,
			&v.Styles,
			&v.Description,
			&v.ServicesOffered,
			&rating,
			&email,
			&phone,
			&website,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}

		v.Category = entity.ParseCategory(category)
		v.Region = nullStringToPtr(region)
		v.Suburb = nullStringToPtr(suburb)
		if maxGuests.Valid {
			cast := int(maxGuests.Int64)
			v.MaxGuests = &cast
		}
		if priceMin.Valid {
			val := priceMin.Int64
			v.PriceMin = &val
		}
		if priceMax.Valid {
			val := priceMax.Int64
			v.PriceMax = &val
		}
		if rating.Valid {
			val := rating.Float64
			v.Rating = &val
		}
		v.Email = nullStringToPtr(email)
		v.Phone = nullStringToPtr(phone)
		v.Website = nullStringToPtr(website)

		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}
