// Package sanitize strips markup from user-supplied text before it is
// returned to clients.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer removes active content from free text.
type Sanitizer interface {
	Sanitize(text string) string
}

// Strict removes every HTML element. Script and style bodies are dropped
// along with their tags.
type Strict struct {
	policy *bluemonday.Policy
}

// NewStrict returns a Strict sanitizer.
func NewStrict() *Strict {
	return &Strict{policy: bluemonday.StrictPolicy()}
}

// plainText undoes the escapes the policy applies to ordinary text.
// Entities for < and > are left alone so no tag can reappear.
var plainText = strings.NewReplacer(
	"&amp;", "&",
	"&#39;", "'",
	"&#34;", `"`,
)

// Sanitize returns text with all markup removed. Quotes and ampersands
// come back as written.
func (s *Strict) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return plainText.Replace(s.policy.Sanitize(text))
}
