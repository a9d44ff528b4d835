// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsValidEmail reports whether s is a plausible email address.
//
// It uses net/mail parsing rather than a hand-rolled regex, then rejects
// the display-name form ("Name <addr>") that mail.ParseAddress accepts,
// since accounts store bare addresses only.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name form and anything parsing changed.
	return addr.Name == "" && addr.Address == s
}

// IsValidObjectID reports whether s is a well-formed MongoDB ObjectID hex
// string. It does not check that a document with that id exists.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// MaxFullNameLen caps person and account names. Long enough for compound
// names, short enough to keep index keys reasonable.
const MaxFullNameLen = 200

// IsValidFullName reports whether a normalized full name is acceptable.
func IsValidFullName(s string) bool {
	return s != "" && len(s) <= MaxFullNameLen
}
