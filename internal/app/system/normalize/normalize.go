// Package normalize provides canonical forms for user-entered fields
// before they are persisted or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Year trims a free-text year field ("1950", "khoảng 1920").
func Year(s string) string {
	return strings.TrimSpace(s)
}
