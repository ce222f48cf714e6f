package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/vendor-outreach/internal/entity"
)

// ErrWeddingNotFound is returned when the wedding does not exist or belongs to another user.
var ErrWeddingNotFound = errors.New("wedding not found")

// WeddingsRepository persists weddings scoped to their owning user.
type WeddingsRepository interface {
	Create(ctx context.Context, wedding *entity.Wedding) (*entity.Wedding, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Wedding, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Wedding, error)
	Update(ctx context.Context, wedding *entity.Wedding) (*entity.Wedding, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// PGXWeddingsRepository implements WeddingsRepository with pgx.
type PGXWeddingsRepository struct {
	pool pgxPool
}

// NewPGXWeddingsRepository instantiates a weddings repository.
func NewPGXWeddingsRepository(pool *pgxpool.Pool) *PGXWeddingsRepository {
	return &PGXWeddingsRepository{pool: pool}
}

const weddingColumns = `id, user_id, title, wedding_date, location, guest_count, budget_total, style, COALESCE(preferences, '{}'), created_at, updated_at`

// Create inserts a wedding and returns the stored row.
func (r *PGXWeddingsRepository) Create(ctx context.Context, wedding *entity.Wedding) (*entity.Wedding, error) {
	if wedding == nil {
		return nil, fmt.Errorf("wedding payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO weddings (user_id, title, wedding_date, location, guest_count, budget_total, style, preferences)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+weddingColumns,
		wedding.UserID,
		wedding.Title,
		wedding.WeddingDate,
		wedding.Location,
		nullable(wedding.GuestCount),
		nullable(wedding.BudgetTotal),
		nullableText(wedding.Style),
		textArray(wedding.Preferences),
	)

	created, err := scanWedding(row)
	if err != nil {
		return nil, fmt.Errorf("insert wedding: %w", err)
	}
	return created, nil
}

// ListByUser returns the user's weddings, newest first.
func (r *PGXWeddingsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Wedding, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+weddingColumns+` FROM weddings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list weddings: %w", err)
	}
	defer rows.Close()

	var weddings []entity.Wedding
	for rows.Next() {
		wedding, err := scanWedding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wedding row: %w", err)
		}
		weddings = append(weddings, *wedding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weddings: %w", err)
	}
	return weddings, nil
}

// GetForUser fetches a wedding owned by userID.
func (r *PGXWeddingsRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Wedding, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+weddingColumns+` FROM weddings WHERE id = $1 AND user_id = $2`, id, userID)

	wedding, err := scanWedding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWeddingNotFound
		}
		return nil, fmt.Errorf("query wedding: %w", err)
	}
	return wedding, nil
}

// Update overwrites the mutable fields of a wedding owned by wedding.UserID.
func (r *PGXWeddingsRepository) Update(ctx context.Context, wedding *entity.Wedding) (*entity.Wedding, error) {
	if wedding == nil {
		return nil, fmt.Errorf("wedding payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        UPDATE weddings SET
            title = $3,
            wedding_date = $4,
            location = $5,
            guest_count = $6,
            budget_total = $7,
            style = $8,
            preferences = $9,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING `+weddingColumns,
		wedding.ID,
		wedding.UserID,
		wedding.Title,
		wedding.WeddingDate,
		wedding.Location,
		nullable(wedding.GuestCount),
		nullable(wedding.BudgetTotal),
		nullableText(wedding.Style),
		textArray(wedding.Preferences),
	)

	updated, err := scanWedding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWeddingNotFound
		}
		return nil, fmt.Errorf("update wedding: %w", err)
	}
	return updated, nil
}

// Delete removes a wedding owned by userID. Outreach rows cascade.
func (r *PGXWeddingsRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM weddings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete wedding: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrWeddingNotFound
	}
	return nil
}

func scanWedding(row pgx.Row) (*entity.Wedding, error) {
	var (
		w           entity.Wedding
		weddingDate sql.NullTime
		guestCount  sql.NullInt64
		budgetTotal sql.NullInt64
		style       sql.NullString
	)

	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Title,
		&weddingDate,
		&w.Location,
		&guestCount,
		&budgetTotal,
		&style,
		&w.Preferences,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if weddingDate.Valid {
		ts := weddingDate.Time
		w.WeddingDate = &ts
	}
	if guestCount.Valid {
		cast := int(guestCount.Int64)
		w.GuestCount = &cast
	}
	if budgetTotal.Valid {
		val := budgetTotal.Int64
		w.BudgetTotal = &val
	}
	w.Style = nullStringToPtr(style)

	return &w, nil
}
