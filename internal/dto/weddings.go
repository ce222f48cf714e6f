package dto

// CreateWeddingRequest is the payload for POST /weddings. WeddingDate uses YYYY-MM-DD and
// BudgetTotal is in cents.
type CreateWeddingRequest struct {
	Title       string   `json:"title"`
	WeddingDate *string  `json:"wedding_date,omitempty"`
	Location    string   `json:"location"`
	GuestCount  *int     `json:"guest_count,omitempty"`
	BudgetTotal *int64   `json:"budget_total,omitempty"`
	Style       *string  `json:"style,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

// UpdateWeddingRequest patches a wedding; nil fields are left unchanged.
type UpdateWeddingRequest struct {
	Title       *string   `json:"title,omitempty"`
	WeddingDate *string   `json:"wedding_date,omitempty"`
	Location    *string   `json:"location,omitempty"`
	GuestCount  *int      `json:"guest_count,omitempty"`
	BudgetTotal *int64    `json:"budget_total,omitempty"`
	Style       *string   `json:"style,omitempty"`
	Preferences *[]string `json:"preferences,omitempty"`
}
