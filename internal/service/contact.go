package service

import (
	"context"
	"errors"
	"net"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	defaultPhoneRegion = "AU"
	mxLookupTimeout    = 3 * time.Second
)

// ErrUndeliverableEmail is returned when an address fails syntax or MX validation.
var ErrUndeliverableEmail = errors.New("email address is not deliverable")

// DNSResolver abstracts MX lookups to simplify testing. *net.Resolver satisfies it.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// ContactNormalizer cleans vendor contact details on import and validates outreach recipients.
type ContactNormalizer struct {
	DefaultRegion string
	dnsResolver   DNSResolver
}

// ContactOption configures optional dependencies.
type ContactOption func(*ContactNormalizer)

// WithDNSResolver enables MX verification of recipient domains.
func WithDNSResolver(resolver DNSResolver) ContactOption {
	return func(n *ContactNormalizer) {
		n.dnsResolver = resolver
	}
}

// NewContactNormalizer builds a normalizer. Phone numbers without a country code are parsed in
// defaultRegion.
func NewContactNormalizer(defaultRegion string, opts ...ContactOption) *ContactNormalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	n := &ContactNormalizer{DefaultRegion: region}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// CleanEmail lower-cases raw and checks its syntax and domain. It performs no network calls.
func (n *ContactNormalizer) CleanEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	local, domain, _ := strings.Cut(email, "@")
	if !isDomainValid(domain) {
		return "", false
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", false
	}
	return local + "@" + asciiDomain, true
}

// DeliverableEmail cleans raw and, when a resolver is configured, requires an MX record for its domain.
func (n *ContactNormalizer) DeliverableEmail(ctx context.Context, raw string) (string, error) {
	email, ok := n.CleanEmail(raw)
	if !ok {
		return "", ErrUndeliverableEmail
	}
	if n.dnsResolver == nil {
		return email, nil
	}
	_, domain, _ := strings.Cut(email, "@")
	if !n.hasMXRecord(ctx, domain) {
		return "", ErrUndeliverableEmail
	}
	return email, nil
}

// NormalizePhone formats raw as E.164, or returns "" when it is not a valid number.
func (n *ContactNormalizer) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, n.DefaultRegion)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizeWebsite returns the vendor site as an https URL with a punycode host, no fragment and
// no click-tracking parameters. Anything that is not a web address yields "".
func (n *ContactNormalizer) NormalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	host, err := idnaProfile.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil || !isDomainValid(host) {
		return ""
	}
	if port := u.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	}

	site := url.URL{Scheme: "https", Host: host, Path: strings.TrimSuffix(u.Path, "/")}
	if query := withoutTracking(u.Query()); len(query) > 0 {
		site.RawQuery = query.Encode()
	}
	return site.String()
}

func (n *ContactNormalizer) hasMXRecord(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := n.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

var trackingParams = map[string]bool{"fbclid": true, "gclid": true, "mc_eid": true, "igshid": true}

func withoutTracking(query url.Values) url.Values {
	for key := range query {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || trackingParams[lower] {
			query.Del(key)
		}
	}
	return query
}

// isDomainValid wants at least a name and a TLD, with no empty or hyphen-edged labels.
func isDomainValid(domain string) bool {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	return !slices.ContainsFunc(labels, func(label string) bool {
		return label == "" || label[0] == '-' || label[len(label)-1] == '-'
	})
}
