package matching

import (
	"fmt"
	"strings"

	"github.com/octobees/vendor-outreach/internal/entity"
)

const (
	// BudgetCategoryShare is the number of vendor categories a total wedding budget is assumed to split across.
	BudgetCategoryShare = 5

	maxPreferencePoints = 10
	pointsPerPreference = 3

	highRatingThreshold = 4.7
	goodRatingThreshold = 4.5
)

// Requirements describes what a couple is looking for. Only Location is mandatory; every
// other dimension contributes zero points when absent.
type Requirements struct {
	Location    string   `json:"location"`
	GuestCount  *int     `json:"guest_count,omitempty"`
	BudgetTotal *int64   `json:"budget_total,omitempty"`
	Style       string   `json:"style,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

// Score evaluates one vendor against the requirements and returns a 0-100 score with the
// human readable reasons for the match.
func Score(vendor entity.Vendor, req Requirements) (int, []string) {
	total := scoreLocation(vendor, req) +
		scoreCapacity(vendor, req) +
		scoreBudget(vendor, req) +
		scoreStyle(vendor, req) +
		scorePreferences(vendor, req) +
		scoreRating(vendor)
	if total > 100 {
		total = 100
	}
	return total, matchReasons(vendor, req)
}

func scoreLocation(vendor entity.Vendor, req Requirements) int {
	switch locationField(vendor, req.Location) {
	case fieldLocation:
		return 30
	case fieldRegion:
		return 20
	case fieldSuburb:
		return 25
	default:
		return 0
	}
}

func scoreCapacity(vendor entity.Vendor, req Requirements) int {
	if !venueFits(vendor, req) {
		return 0
	}
	score := 20
	if float64(*vendor.MaxGuests) <= float64(*req.GuestCount)*1.5 {
		score += 5
	}
	return score
}

func scoreBudget(vendor entity.Vendor, req Requirements) int {
	estimate, share, ok := budgetFigures(vendor, req)
	if !ok || estimate > share*1.5 {
		return 0
	}
	score := 15
	if estimate <= share {
		score += 5
	}
	return score
}

func scoreStyle(vendor entity.Vendor, req Requirements) int {
	if styleMatches(vendor, req.Style) {
		return 20
	}
	return 0
}

func scorePreferences(vendor entity.Vendor, req Requirements) int {
	if len(req.Preferences) == 0 {
		return 0
	}
	haystack := strings.ToLower(vendor.Description + " " + strings.Join(vendor.ServicesOffered, " "))
	score := 0
	for _, keyword := range req.Preferences {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			score += pointsPerPreference
		}
	}
	if score > maxPreferencePoints {
		return maxPreferencePoints
	}
	return score
}

func scoreRating(vendor entity.Vendor) int {
	if vendor.Rating == nil {
		return 0
	}
	switch rating := *vendor.Rating; {
	case rating >= highRatingThreshold:
		return 10
	case rating >= goodRatingThreshold:
		return 5
	default:
		return 0
	}
}

// matchReasons re-derives a subset of the scoring conditions for display. It never explains
// preference keyword points.
func matchReasons(vendor entity.Vendor, req Requirements) []string {
	var reasons []string

	switch locationField(vendor, req.Location) {
	case fieldLocation:
		reasons = append(reasons, "Located in "+vendor.Location)
	case fieldRegion:
		reasons = append(reasons, "Services the "+*vendor.Region+" region")
	case fieldSuburb:
		reasons = append(reasons, "Based in "+*vendor.Suburb)
	}
	if styleMatches(vendor, req.Style) {
		reasons = append(reasons, fmt.Sprintf("Matches your %s style", req.Style))
	}
	if venueFits(vendor, req) {
		reasons = append(reasons, fmt.Sprintf("Accommodates %d guests", *req.GuestCount))
	}
	if vendor.Rating != nil && *vendor.Rating >= highRatingThreshold {
		reasons = append(reasons, fmt.Sprintf("Highly rated (%.1f★)", *vendor.Rating))
	}
	if estimate, share, ok := budgetFigures(vendor, req); ok && estimate <= share {
		reasons = append(reasons, "Within your budget")
	}

	return reasons
}

type matchedField int

const (
	fieldNone matchedField = iota
	fieldLocation
	fieldRegion
	fieldSuburb
)

// locationField returns the first vendor location field containing the query. The checks are
// exclusive so a vendor matching several fields is only credited once.
func locationField(vendor entity.Vendor, query string) matchedField {
	query = strings.ToLower(query)
	switch {
	case containsFold(&vendor.Location, query):
		return fieldLocation
	case containsFold(vendor.Region, query):
		return fieldRegion
	case containsFold(vendor.Suburb, query):
		return fieldSuburb
	default:
		return fieldNone
	}
}

// containsFold is a plain substring test, so an empty query matches any present field.
func containsFold(field *string, lowerQuery string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), lowerQuery)
}

func venueFits(vendor entity.Vendor, req Requirements) bool {
	if vendor.Category != entity.CategoryVenue || req.GuestCount == nil || vendor.MaxGuests == nil {
		return false
	}
	return *vendor.MaxGuests >= *req.GuestCount
}

// budgetFigures returns the vendor's midpoint price and the per-category budget share.
func budgetFigures(vendor entity.Vendor, req Requirements) (estimate, share float64, ok bool) {
	if req.BudgetTotal == nil || vendor.PriceMin == nil || vendor.PriceMax == nil {
		return 0, 0, false
	}
	estimate = float64(*vendor.PriceMin+*vendor.PriceMax) / 2
	share = float64(*req.BudgetTotal) / BudgetCategoryShare
	return estimate, share, true
}

func styleMatches(vendor entity.Vendor, style string) bool {
	if style == "" {
		return false
	}
	style = strings.ToLower(style)
	for _, tag := range vendor.Styles {
		tag = strings.ToLower(tag)
		// A blank tag would be contained in every style.
		if tag == "" {
			continue
		}
		if strings.Contains(tag, style) || strings.Contains(style, tag) {
			return true
		}
	}
	return false
}
