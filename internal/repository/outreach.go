package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/vendor-outreach/internal/entity"
)

var (
	// ErrOutreachNotFound is returned when the outreach does not exist or is not visible to the user.
	ErrOutreachNotFound = errors.New("outreach not found")
	// ErrOutreachStatusChanged is returned by conditional updates when the row has left the
	// expected status in the meantime.
	ErrOutreachStatusChanged = errors.New("outreach status changed")
)

// StaleClaimAfter is how long a message may sit in sending before another run may claim it.
const StaleClaimAfter = 15 * time.Minute

// OutreachRepository persists outreach emails and their delivery and response state.
type OutreachRepository interface {
	Create(ctx context.Context, outreach *entity.Outreach) (*entity.Outreach, error)
	ListByWedding(ctx context.Context, weddingID uuid.UUID) ([]entity.Outreach, error)
	ClaimSendable(ctx context.Context, weddingID uuid.UUID, ids []uuid.UUID) ([]entity.Outreach, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Outreach, error)
	MarkDelivery(ctx context.Context, id uuid.UUID, status entity.OutreachStatus, messageID, deliveryErr *string) (*entity.Outreach, error)
	UpdateResponse(ctx context.Context, id uuid.UUID, from, to entity.OutreachStatus, notes *string) (*entity.Outreach, error)
	CountByStatus(ctx context.Context, weddingID uuid.UUID) (map[entity.OutreachStatus]int, error)
}

// PGXOutreachRepository implements OutreachRepository with pgx.
type PGXOutreachRepository struct {
	pool pgxPool
}

// NewPGXOutreachRepository instantiates an outreach repository.
func NewPGXOutreachRepository(pool *pgxpool.Pool) *PGXOutreachRepository {
	return &PGXOutreachRepository{pool: pool}
}

const outreachColumns = `o.id, o.wedding_id, o.vendor_id, o.recipient_email, o.subject, o.body, o.status,
            o.message_id, o.error, o.response_notes, o.sent_at, o.responded_at, o.created_at, o.updated_at`

// Create stores a new outreach row, normally a draft.
func (r *PGXOutreachRepository) Create(ctx context.Context, outreach *entity.Outreach) (*entity.Outreach, error) {
	if outreach == nil {
		return nil, fmt.Errorf("outreach payload is nil")
	}
	status := outreach.Status
	if status == "" {
		status = entity.OutreachDraft
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO outreach_messages AS o (wedding_id, vendor_id, recipient_email, subject, body, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+outreachColumns,
		outreach.WeddingID,
		outreach.VendorID,
		outreach.RecipientEmail,
		outreach.Subject,
		outreach.Body,
		string(status),
	)

	created, err := scanOutreach(row)
	if err != nil {
		return nil, fmt.Errorf("insert outreach: %w", err)
	}
	return created, nil
}

// ListByWedding returns every outreach for a wedding, oldest first.
func (r *PGXOutreachRepository) ListByWedding(ctx context.Context, weddingID uuid.UUID) ([]entity.Outreach, error) {
	return r.list(ctx, `SELECT `+outreachColumns+` FROM outreach_messages o WHERE o.wedding_id = $1 ORDER BY o.created_at, o.id`, weddingID)
}

// ClaimSendable moves outreach ready for delivery to sending and returns it, oldest first.
// With no ids it claims every draft; with ids it claims the matching drafts and failed
// messages so failures can be retried. Rows stuck in sending for StaleClaimAfter are claimed
// again. Concurrent callers never receive the same row.
func (r *PGXOutreachRepository) ClaimSendable(ctx context.Context, weddingID uuid.UUID, ids []uuid.UUID) ([]entity.Outreach, error) {
	ready := `o.status = 'draft'`
	args := []any{weddingID, StaleClaimAfter.Seconds()}
	if len(ids) > 0 {
		ready = `o.id = ANY($3) AND o.status IN ('draft', 'failed')`
		args = append(args, ids)
	}

	return r.list(ctx, `
        WITH claimed AS (
            UPDATE outreach_messages AS o SET status = 'sending', updated_at = NOW()
            WHERE o.wedding_id = $1
              AND (`+ready+`
                   OR (o.status = 'sending' AND o.updated_at < NOW() - make_interval(secs => $2)))
            RETURNING o.*
        )
        SELECT `+outreachColumns+` FROM claimed o ORDER BY o.created_at, o.id`, args...)
}

// GetForUser fetches an outreach whose wedding belongs to userID.
func (r *PGXOutreachRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Outreach, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+outreachColumns+` FROM outreach_messages o
        JOIN weddings w ON w.id = o.wedding_id
        WHERE o.id = $1 AND w.user_id = $2`, id, userID)

	outreach, err := scanOutreach(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOutreachNotFound
		}
		return nil, fmt.Errorf("query outreach: %w", err)
	}
	return outreach, nil
}

// MarkDelivery records the outcome of a delivery attempt on a claimed row. It returns
// ErrOutreachStatusChanged when the row is no longer in sending.
func (r *PGXOutreachRepository) MarkDelivery(ctx context.Context, id uuid.UUID, status entity.OutreachStatus, messageID, deliveryErr *string) (*entity.Outreach, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE outreach_messages AS o SET
            status = $2,
            message_id = COALESCE($3, o.message_id),
            error = $4,
            sent_at = CASE WHEN $2 = 'sent' THEN NOW() ELSE o.sent_at END,
            updated_at = NOW()
        WHERE o.id = $1 AND o.status = 'sending'
        RETURNING `+outreachColumns,
		id, string(status), nullableText(messageID), nullableText(deliveryErr),
	)

	updated, err := scanOutreach(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOutreachStatusChanged
		}
		return nil, fmt.Errorf("mark outreach delivery: %w", err)
	}
	return updated, nil
}

// UpdateResponse moves an outreach from one status to another and records the vendor's reply.
// Nil notes keep the previous notes. It returns ErrOutreachStatusChanged when the row is no
// longer in from.
func (r *PGXOutreachRepository) UpdateResponse(ctx context.Context, id uuid.UUID, from, to entity.OutreachStatus, notes *string) (*entity.Outreach, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE outreach_messages AS o SET
            status = $3,
            response_notes = COALESCE($4, o.response_notes),
            responded_at = NOW(),
            updated_at = NOW()
        WHERE o.id = $1 AND o.status = $2
        RETURNING `+outreachColumns,
		id, string(from), string(to), nullableText(notes),
	)

	updated, err := scanOutreach(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOutreachStatusChanged
		}
		return nil, fmt.Errorf("update outreach response: %w", err)
	}
	return updated, nil
}

// CountByStatus aggregates outreach for one wedding.
func (r *PGXOutreachRepository) CountByStatus(ctx context.Context, weddingID uuid.UUID) (map[entity.OutreachStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM outreach_messages WHERE wedding_id = $1 GROUP BY status`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("count outreach: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.OutreachStatus]int)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan outreach count: %w", err)
		}
		counts[entity.OutreachStatus(status)] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outreach counts: %w", err)
	}
	return counts, nil
}

func (r *PGXOutreachRepository) list(ctx context.Context, query string, args ...any) ([]entity.Outreach, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outreach: %w", err)
	}
	defer rows.Close()

	var items []entity.Outreach
	for rows.Next() {
		item, err := scanOutreach(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outreach row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outreach: %w", err)
	}
	return items, nil
}

func scanOutreach(row pgx.Row) (*entity.Outreach, error) {
	var (
		o             entity.Outreach
		status        string
		messageID     sql.NullString
		deliveryErr   sql.NullString
		responseNotes sql.NullString
		sentAt        sql.NullTime
		respondedAt   sql.NullTime
	)

	err := row.Scan(
		&o.ID,
		&o.WeddingID,
		&o.VendorID,
		&o.RecipientEmail,
		&o.Subject,
		&o.Body,
		&status,
		&messageID,
		&deliveryErr,
		&responseNotes,
		&sentAt,
		&respondedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = entity.OutreachStatus(status)
	o.MessageID = nullStringToPtr(messageID)
	o.Error = nullStringToPtr(deliveryErr)
	o.ResponseNotes = nullStringToPtr(responseNotes)
	if sentAt.Valid {
		ts := sentAt.Time
		o.SentAt = &ts
	}
	if respondedAt.Valid {
		ts := respondedAt.Time
		o.RespondedAt = &ts
	}

	return &o, nil
}
