// Package sanitize wraps the HTML sanitization policy applied to user
// submitted comment fields before validation and persistence.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy sanitizes comment bodies and author names. It strips all HTML and
// normalizes surrounding whitespace; it is safe for concurrent use.
type Policy struct {
	strict *bluemonday.Policy
}

// New creates the comment sanitization policy.
func New() *Policy {
	return &Policy{strict: bluemonday.StrictPolicy()}
}

// Body sanitizes a comment body: strips every HTML element and attribute,
// then trims surrounding whitespace. Inner whitespace and newlines are kept.
func (p *Policy) Body(s string) string {
	return strings.TrimSpace(p.strict.Sanitize(s))
}

// AuthorName sanitizes an author display name: strips HTML, trims, and
// collapses internal whitespace runs to single spaces.
func (p *Policy) AuthorName(s string) string {
	cleaned := strings.TrimSpace(p.strict.Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}
