package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/octobees/vendor-outreach/internal/entity"
)

//go:embed prompts/outreach.md
var outreachPromptTemplate string

const (
	subjectPrefix  = "subject:"
	defaultSignOff = "The happy couple"
	displayDate    = "2 January 2006"
)

var dollarPrinter = message.NewPrinter(language.English)

// outreachDraft is a generated email before it is stored.
type outreachDraft struct {
	Subject string
	Body    string
}

type weddingFacts struct {
	Title       string   `json:"title"`
	Date        string   `json:"date,omitempty"`
	Location    string   `json:"location"`
	GuestCount  *int     `json:"guest_count,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	Style       string   `json:"style,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

type vendorFacts struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Styles      []string `json:"styles,omitempty"`
	Services    []string `json:"services,omitempty"`
	Description string   `json:"description,omitempty"`
}

func buildOutreachPrompt(w entity.Wedding, v entity.Vendor, signOff string) (string, error) {
	weddingJSON, err := marshalFacts(factsForWedding(w))
	if err != nil {
		return "", fmt.Errorf("encode wedding facts: %w", err)
	}
	vendorJSON, err := marshalFacts(vendorFacts{
		Name:        v.Name,
		Category:    string(v.Category),
		Location:    v.Location,
		Styles:      v.Styles,
		Services:    v.ServicesOffered,
		Description: v.Description,
	})
	if err != nil {
		return "", fmt.Errorf("encode vendor facts: %w", err)
	}

	template := outreachPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Wedding:\n{{WEDDING_JSON}}\n\nVendor:\n{{VENDOR_JSON}}\n\nWrite an enquiry email signed {{SIGN_OFF}}. Start with a Subject: line."
	}
	prompt := strings.ReplaceAll(template, "{{WEDDING_JSON}}", weddingJSON)
	prompt = strings.ReplaceAll(prompt, "{{VENDOR_JSON}}", vendorJSON)
	prompt = strings.ReplaceAll(prompt, "{{SIGN_OFF}}", signOff)
	return prompt, nil
}

// marshalFacts renders indented JSON without HTML escaping, so names like "Sam & Alex" stay readable.
func marshalFacts(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func factsForWedding(w entity.Wedding) weddingFacts {
	facts := weddingFacts{
		Title:       w.Title,
		Location:    w.Location,
		GuestCount:  w.GuestCount,
		Preferences: w.Preferences,
	}
	if w.WeddingDate != nil {
		facts.Date = w.WeddingDate.Format(displayDate)
	}
	if w.BudgetTotal != nil {
		facts.Budget = dollarPrinter.Sprintf("$%d", *w.BudgetTotal/100)
	}
	if w.Style != nil {
		facts.Style = *w.Style
	}
	return facts
}

// parseOutreachDraft splits model output into subject and body. A missing Subject: line falls
// back to a generic subject built from the wedding.
func parseOutreachDraft(raw string, w entity.Wedding) (outreachDraft, error) {
	text := stripCodeFence(raw)
	draft := outreachDraft{Subject: fallbackSubject(w)}

	first, rest, _ := strings.Cut(text, "\n")
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(first)), subjectPrefix) {
		subject := strings.TrimSpace(strings.TrimSpace(first)[len(subjectPrefix):])
		if subject != "" {
			draft.Subject = subject
		}
		text = rest
	}

	draft.Body = strings.TrimSpace(text)
	if draft.Body == "" {
		return outreachDraft{}, errors.New("generated draft has no body")
	}
	return draft, nil
}

func fallbackSubject(w entity.Wedding) string {
	if w.WeddingDate != nil {
		return "Wedding enquiry for " + w.WeddingDate.Format(displayDate)
	}
	return "Wedding enquiry for our wedding"
}

// templateDraft is used when no text generator is configured.
func templateDraft(w entity.Wedding, v entity.Vendor, signOff string) outreachDraft {
	facts := factsForWedding(w)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s team,\n\n", v.Name)
	b.WriteString("We're planning our wedding")
	if facts.Date != "" {
		fmt.Fprintf(&b, " on %s", facts.Date)
	}
	fmt.Fprintf(&b, " in %s", w.Location)
	if w.GuestCount != nil {
		fmt.Fprintf(&b, " for around %d guests", *w.GuestCount)
	}
	b.WriteString(".")
	if facts.Style != "" {
		fmt.Fprintf(&b, " We're going for a %s feel", strings.ToLower(facts.Style))
		if len(v.Styles) > 0 {
			b.WriteString(" and love the look of your work")
		}
		b.WriteString(".")
	}
	b.WriteString("\n\nCould you let us know if you're available and send through an indicative quote?\n\n")
	fmt.Fprintf(&b, "Thanks so much,\n%s", signOff)

	return outreachDraft{Subject: fallbackSubject(w), Body: b.String()}
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
