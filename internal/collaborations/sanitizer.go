package collaborations

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips any markup from free text submitted by visitors,
// the stored value is plain text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

func (s *Sanitizer) Text(raw string) string {
	// strict policy escapes what it keeps, undo that since nothing here is rendered as html
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

func (s *Sanitizer) OptionalText(raw *string) *string {
	if raw == nil {
		return nil
	}
	clean := s.Text(*raw)
	return &clean
}
