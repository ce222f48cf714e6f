package dto

import "github.com/octobees/vendor-outreach/internal/service/matching"

// MatchRequest is an ad-hoc requirement set posted to /matches.
type MatchRequest struct {
	Location    string   `json:"location"`
	GuestCount  *int     `json:"guest_count,omitempty"`
	BudgetTotal *int64   `json:"budget_total,omitempty"`
	Style       string   `json:"style,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

// MatchResponse carries the grouped matches and the chat narrative built from them.
type MatchResponse struct {
	Matches matching.VendorMatches `json:"matches"`
	Summary string                 `json:"summary"`
}
