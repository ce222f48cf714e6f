package matching

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	venueDescriptionLimit = 150
	otherDescriptionLimit = 130
	reasonSeparator       = " • "
	closingCallToAction   = "Would you like me to draft personalised outreach emails to any of these vendors? Just tell me which ones you're interested in."
)

var moneyPrinter = message.NewPrinter(language.English)

type chatSection struct {
	heading          string
	matches          []VendorMatch
	descriptionLimit int
	showCapacity     bool
}

// FormatForChat renders matches as a chat message. Only venues, photographers and caterers are
// shown even though TotalMatches counts every category.
func FormatForChat(matches VendorMatches) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I found %d %s that match your requirements! Here are my top recommendations:\n",
		matches.TotalMatches, pluralVendors(matches.TotalMatches))

	sections := []chatSection{
		{heading: "🏛️ **Venues**", matches: matches.Venues, descriptionLimit: venueDescriptionLimit, showCapacity: true},
		{heading: "📸 **Photographers**", matches: matches.Photographers, descriptionLimit: otherDescriptionLimit},
		{heading: "🍽️ **Caterers**", matches: matches.Caterers, descriptionLimit: otherDescriptionLimit},
	}
	for _, section := range sections {
		if len(section.matches) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(section.heading)
		b.WriteString("\n")
		for i, match := range section.matches {
			writeEntry(&b, i+1, match, section)
		}
	}

	b.WriteString("\n")
	b.WriteString(closingCallToAction)
	return b.String()
}

func writeEntry(b *strings.Builder, position int, match VendorMatch, section chatSection) {
	fmt.Fprintf(b, "\n**%d. %s** (%s) — %d%% match\n", position, match.Name, match.Location, match.MatchScore)

	if section.showCapacity {
		if match.MaxGuests != nil {
			fmt.Fprintf(b, "👥 Capacity: up to %d guests\n", *match.MaxGuests)
		}
	} else if price := formatPriceRange(match.PriceMin, match.PriceMax); price != "" {
		fmt.Fprintf(b, "💰 %s\n", price)
	}

	if desc := truncate(match.Description, section.descriptionLimit); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n")
	}
	if len(match.MatchReasons) > 0 {
		fmt.Fprintf(b, "✨ %s\n", strings.Join(match.MatchReasons, reasonSeparator))
	}

	var contact []string
	if match.Website != nil && strings.TrimSpace(*match.Website) != "" {
		contact = append(contact, "🌐 "+strings.TrimSpace(*match.Website))
	}
	if match.Phone != nil && strings.TrimSpace(*match.Phone) != "" {
		contact = append(contact, "📞 "+strings.TrimSpace(*match.Phone))
	}
	if len(contact) > 0 {
		b.WriteString(strings.Join(contact, " | "))
		b.WriteString("\n")
	}
}

// formatPriceRange renders cent amounts as whole dollars with thousands separators.
func formatPriceRange(minCents, maxCents *int64) string {
	switch {
	case minCents != nil && maxCents != nil:
		return fmt.Sprintf("%s - %s", dollars(*minCents), dollars(*maxCents))
	case minCents != nil:
		return "From " + dollars(*minCents)
	case maxCents != nil:
		return "Up to " + dollars(*maxCents)
	default:
		return ""
	}
}

func dollars(cents int64) string {
	return moneyPrinter.Sprintf("$%d", cents/100)
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func pluralVendors(n int) string {
	if n == 1 {
		return "vendor"
	}
	return "vendors"
}
