// Package compliance screens translation requests before they reach a model
// backend. A backend is eligible only when it serves the deployment region,
// holds every required certification, and the request text is free of banned
// phrases and detectable PII.
package compliance

import (
	"fmt"
	"regexp"
	"strings"

	"lingo-load/internal/models"
)

// Report is the outcome of one gate evaluation.
type Report struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}

// PII patterns matched against the raw request text. Card numbers are matched
// loosely (13-19 digits with optional separators); a Luhn check would reject
// test fixtures that operators legitimately translate, so we flag instead.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[\s.\-]?\(?\d{2,4}\)?[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}\b`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ \-]?){13,19}\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

var piiPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"email address", emailPattern},
	{"phone number", phonePattern},
	{"payment card number", cardPattern},
	{"social security number", ssnPattern},
}

// Gate holds the immutable policy configuration loaded at startup.
type Gate struct {
	region        string
	requiredCerts []string
	bannedPhrases []string
}

// Option mutates a Gate during construction.
type Option func(*Gate)

// WithRegion sets the deployment region backends must serve. Empty disables
// the region check.
func WithRegion(region string) Option {
	return func(g *Gate) { g.region = region }
}

// WithRequiredCertifications sets certifications every backend must hold.
func WithRequiredCertifications(certs ...string) Option {
	return func(g *Gate) { g.requiredCerts = certs }
}

// WithBannedPhrases sets phrases that block a request outright.
func WithBannedPhrases(phrases ...string) Option {
	return func(g *Gate) { g.bannedPhrases = phrases }
}

// NewGate creates a Gate with the given policy options.
func NewGate(opts ...Option) *Gate {
	g := &Gate{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate checks the request text against the gate policy for one backend.
// It never errors; policy failures are reported as violations.
func (g *Gate) Evaluate(text string, backend *models.BackendProfile) Report {
	var violations []string

	if g.region != "" {
		if !containsFold(backend.RegionList(), g.region) {
			violations = append(violations,
				fmt.Sprintf("backend %s does not serve region %s", backend.Identifier, g.region))
		}
	}

	held := backend.CertificationList()
	for _, cert := range g.requiredCerts {
		if !containsFold(held, cert) {
			violations = append(violations,
				fmt.Sprintf("backend %s lacks required certification %s", backend.Identifier, cert))
		}
	}

	lowerText := strings.ToLower(text)
	for _, phrase := range g.bannedPhrases {
		if phrase != "" && strings.Contains(lowerText, strings.ToLower(phrase)) {
			violations = append(violations, fmt.Sprintf("text contains banned phrase %q", phrase))
		}
	}

	for _, pii := range piiPatterns {
		if pii.pattern.MatchString(text) {
			violations = append(violations, fmt.Sprintf("text contains %s", pii.name))
		}
	}

	return Report{Allowed: len(violations) == 0, Violations: violations}
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}
