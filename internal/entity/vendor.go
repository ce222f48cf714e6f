package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies the service a vendor provides.
type Category string

const (
	CategoryVenue         Category = "VENUE"
	CategoryPhotographer  Category = "PHOTOGRAPHER"
	CategoryCatering      Category = "CATERING"
	CategoryFlorist       Category = "FLORIST"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryMarquee       Category = "MARQUEE"
	CategoryOther         Category = "OTHER"
)

var knownCategories = map[Category]struct{}{
	CategoryVenue:         {},
	CategoryPhotographer:  {},
	CategoryCatering:      {},
	CategoryFlorist:       {},
	CategoryEntertainment: {},
	CategoryMarquee:       {},
	CategoryOther:         {},
}

// ParseCategory maps free text onto the closed category set. Unknown values become CategoryOther.
func ParseCategory(raw string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryOther
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := knownCategories[c]
	return ok
}

// Vendor is a wedding supplier stored in the catalogue. Monetary fields are in cents.
type Vendor struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Category        Category  `json:"category"`
	Location        string    `json:"location"`
	Region          *string   `json:"region,omitempty"`
	Suburb          *string   `json:"suburb,omitempty"`
	MaxGuests       *int      `json:"max_guests,omitempty"`
	PriceMin        *int64    `json:"price_min,omitempty"`
	PriceMax        *int64    `json:"price_max,omitempty"`
	Styles          []string  `json:"styles"`
	Description     string    `json:"description"`
	ServicesOffered []string  `json:"services_offered"`
	Rating          *float64  `json:"rating,omitempty"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Website         *string   `json:"website,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
