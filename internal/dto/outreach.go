package dto

import "github.com/octobees/vendor-outreach/internal/entity"

// GenerateOutreachRequest lists the vendors to draft outreach emails for.
type GenerateOutreachRequest struct {
	VendorIDs []string `json:"vendor_ids"`
}

// SkippedVendor explains why no draft was produced for a vendor.
type SkippedVendor struct {
	VendorID string `json:"vendor_id"`
	Reason   string `json:"reason"`
}

// GenerateOutreachResponse returns the stored drafts and any skipped vendors.
type GenerateOutreachResponse struct {
	Drafts  []entity.Outreach `json:"drafts"`
	Skipped []SkippedVendor   `json:"skipped"`
}

// SendOutreachRequest selects drafts to deliver. An empty list sends every pending draft.
type SendOutreachRequest struct {
	OutreachIDs []string `json:"outreach_ids"`
}

// SendOutreachResponse summarises one delivery run.
type SendOutreachResponse struct {
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Results []entity.Outreach `json:"results"`
}

// UpdateOutreachRequest records a vendor's response.
type UpdateOutreachRequest struct {
	Status        string  `json:"status"`
	ResponseNotes *string `json:"response_notes,omitempty"`
}

// Dashboard aggregates outreach progress for one wedding.
type Dashboard struct {
	WeddingID    string         `json:"wedding_id"`
	Total        int            `json:"total"`
	Counts       map[string]int `json:"counts"`
	ResponseRate float64        `json:"response_rate"`
}
