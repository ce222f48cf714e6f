package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutreachStatus tracks an outreach email through delivery and the vendor's reply.
type OutreachStatus string

const (
	OutreachDraft     OutreachStatus = "draft"
	OutreachSending   OutreachStatus = "sending"
	OutreachSent      OutreachStatus = "sent"
	OutreachFailed    OutreachStatus = "failed"
	OutreachResponded OutreachStatus = "responded"
	OutreachDeclined  OutreachStatus = "declined"
	OutreachBooked    OutreachStatus = "booked"
)

// OutreachStatuses lists every status in dashboard order.
var OutreachStatuses = []OutreachStatus{
	OutreachDraft,
	OutreachSending,
	OutreachSent,
	OutreachFailed,
	OutreachResponded,
	OutreachDeclined,
	OutreachBooked,
}

var outreachTransitions = map[OutreachStatus][]OutreachStatus{
	OutreachDraft:     {OutreachSending},
	OutreachFailed:    {OutreachSending},
	OutreachSending:   {OutreachSent, OutreachFailed},
	OutreachSent:      {OutreachResponded, OutreachDeclined, OutreachBooked},
	OutreachResponded: {OutreachDeclined, OutreachBooked},
}

// CanTransition reports whether an outreach may move from s to next.
func (s OutreachStatus) CanTransition(next OutreachStatus) bool {
	for _, allowed := range outreachTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s OutreachStatus) Valid() bool {
	for _, known := range OutreachStatuses {
		if known == s {
			return true
		}
	}
	return false
}

// Outreach is a personalised email addressed to one vendor on behalf of one wedding.
type Outreach struct {
	ID             uuid.UUID      `json:"id"`
	WeddingID      uuid.UUID      `json:"wedding_id"`
	VendorID       uuid.UUID      `json:"vendor_id"`
	RecipientEmail string         `json:"recipient_email"`
	Subject        string         `json:"subject"`
	Body           string         `json:"body"`
	Status         OutreachStatus `json:"status"`
	MessageID      *string        `json:"message_id,omitempty"`
	Error          *string        `json:"error,omitempty"`
	ResponseNotes  *string        `json:"response_notes,omitempty"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	RespondedAt    *time.Time     `json:"responded_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
