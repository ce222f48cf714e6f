package matching

import (
	"context"
	"fmt"

	"github.com/octobees/vendor-outreach/internal/entity"
)

// VendorLoader fetches candidate vendors whose location, region or suburb contains the query
// (case-insensitive). An empty result is not an error.
type VendorLoader interface {
	FindByLocation(ctx context.Context, location string) ([]entity.Vendor, error)
}

// Matcher composes candidate loading and ranking. It holds no state between calls.
type Matcher struct {
	loader VendorLoader
}

// NewMatcher builds a Matcher backed by the given loader.
func NewMatcher(loader VendorLoader) *Matcher {
	return &Matcher{loader: loader}
}

// FindMatchingVendors loads candidates for req.Location and ranks them. The requirements are
// not validated here: an empty location is passed through and matches every vendor.
func (m *Matcher) FindMatchingVendors(ctx context.Context, req Requirements) (VendorMatches, error) {
	candidates, err := m.loader.FindByLocation(ctx, req.Location)
	if err != nil {
		return VendorMatches{}, fmt.Errorf("load candidate vendors: %w", err)
	}
	return Rank(candidates, req), nil
}
