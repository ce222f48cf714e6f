package entity

import (
	"time"

	"github.com/google/uuid"
)

// Wedding captures a couple's stated requirements. BudgetTotal is in cents.
type Wedding struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	WeddingDate *time.Time `json:"wedding_date,omitempty"`
	Location    string     `json:"location"`
	GuestCount  *int       `json:"guest_count,omitempty"`
	BudgetTotal *int64     `json:"budget_total,omitempty"`
	Style       *string    `json:"style,omitempty"`
	Preferences []string   `json:"preferences"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
