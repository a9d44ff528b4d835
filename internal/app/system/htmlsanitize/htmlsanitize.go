// Package htmlsanitize cleans user-supplied rich text before storage.
//
// Member biographies and notes may contain formatted HTML from the web
// client's editor. Everything else in a member record is plain text and is
// not run through this package.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// The editor emits class attributes on tables and formatting marks that
	// the UGC baseline strips.
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("u", "s", "mark")

	return p
}

// Sanitize returns the input with unsafe HTML removed. Plain text passes
// through unchanged.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes and returns template.HTML for direct rendering.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether the input contains no HTML tags.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
