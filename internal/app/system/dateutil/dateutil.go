// Package dateutil handles the dd-mm-yyyy text form of dates used by the
// web client's date fields.
//
// Date fields support dual entry: a free-text "dd-mm-yyyy" string and an
// exact date value. Either representation derives the other, and the year
// field is derived from whichever is set. Parsing and formatting must
// round-trip: ParseInput("25-12-1990") formatted back yields "25-12-1990".
package dateutil

import (
	"strconv"
	"time"
)

// InputLayout is the Go reference layout for the client's dd-mm-yyyy fields.
const InputLayout = "02-01-2006"

// ParseInput parses a dd-mm-yyyy string in UTC. The bool result is false
// for empty or unparseable input; callers keep their prior value in that
// case rather than surfacing an error, so half-typed dates are never
// destructive.
func ParseInput(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(InputLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatInput renders a date in the client's dd-mm-yyyy form.
func FormatInput(t time.Time) string {
	return t.Format(InputLayout)
}

// Year returns the four-digit year of a date as a string, matching the
// free-text year fields on member records.
func Year(t time.Time) string {
	return strconv.Itoa(t.Year())
}

// YearNumber parses a free-text year field. The bool result is false when
// the field is empty or not a plain integer (e.g. "khoảng 1920").
func YearNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
