// Package htmlsanitize strips markup from user-supplied text fields.
// Folder and document descriptions come in from club staff through the
// platform UI; they are stored and echoed back as plain text.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		// Descriptions are plain text; drop all elements and attributes.
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Plain removes all HTML from the input and trims surrounding whitespace.
func Plain(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(getPolicy().Sanitize(s))
}
