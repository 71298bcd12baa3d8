// Package sanitize cleans user-provided text before it is stored or relayed.
// Uses bluemonday to strip dangerous HTML (script tags, event handlers,
// javascript: URLs). Scheme records come from administrative imports and may
// carry light formatting; chat and search input must end up as plain text.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	policyOnce   sync.Once
)

// initPolicies builds the shared policies once, on first use.
func initPolicies() {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
		ugcPolicy = bluemonday.UGCPolicy()
	})
}

// Plain strips all HTML from user input, returning trimmed plain text.
// Used for chat messages, search terms, and translation payloads before
// they are matched, stored, or forwarded upstream.
func Plain(input string) string {
	if input == "" {
		return ""
	}
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// HTML sanitizes scheme description fields, stripping dangerous elements
// while preserving safe formatting tags. This MUST be called on all
// operator-provided scheme text before storing it in the database.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	initPolicies()
	return ugcPolicy.Sanitize(input)
}
