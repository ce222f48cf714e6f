package matching

import (
	"sort"

	"github.com/octobees/vendor-outreach/internal/entity"
)

// CategoryLimit caps how many vendors are surfaced per category.
const CategoryLimit = 5

// VendorMatch is a vendor annotated with the outcome of one scoring pass.
type VendorMatch struct {
	entity.Vendor
	MatchScore   int      `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

// VendorMatches groups the best matches per surfaced category. TotalMatches counts every
// candidate with a nonzero score, including categories that are never surfaced.
type VendorMatches struct {
	Venues        []VendorMatch `json:"venues"`
	Photographers []VendorMatch `json:"photographers"`
	Caterers      []VendorMatch `json:"caterers"`
	TotalMatches  int           `json:"total_matches"`
}

// Rank scores every candidate, drops zero scores, orders the rest by score (keeping input
// order for ties) and keeps the top CategoryLimit venues, photographers and caterers.
func Rank(candidates []entity.Vendor, req Requirements) VendorMatches {
	scored := make([]VendorMatch, 0, len(candidates))
	for _, vendor := range candidates {
		score, reasons := Score(vendor, req)
		if score == 0 {
			continue
		}
		if reasons == nil {
			reasons = []string{}
		}
		scored = append(scored, VendorMatch{Vendor: vendor, MatchScore: score, MatchReasons: reasons})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	return VendorMatches{
		Venues:        topOfCategory(scored, entity.CategoryVenue),
		Photographers: topOfCategory(scored, entity.CategoryPhotographer),
		Caterers:      topOfCategory(scored, entity.CategoryCatering),
		TotalMatches:  len(scored),
	}
}

func topOfCategory(sorted []VendorMatch, category entity.Category) []VendorMatch {
	out := make([]VendorMatch, 0, CategoryLimit)
	for _, match := range sorted {
		if match.Category != category {
			continue
		}
		out = append(out, match)
		if len(out) == CategoryLimit {
			break
		}
	}
	return out
}
