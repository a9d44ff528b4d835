// Package memberval validates member records on create and update.
//
// Every rule lives here, server-side, so a record that skips the web form
// (curl, imports, other clients) is held to the same constraints the form
// shows interactively. Validation accumulates all violations rather than
// failing fast; the full list is returned to the client in one response.
package memberval

import (
	"fmt"
	"time"

	"github.com/lineagehub/lineagehub/internal/app/system/dateutil"
	"github.com/lineagehub/lineagehub/internal/domain/models"
)

// MinParentAgeGap is the smallest plausible age difference, in years,
// between a parent and child. A sanity check, not a biological rule.
const MinParentAgeGap = 16

// Related carries the already-resolved relationship targets of the member
// being validated. Nil means the relationship is absent.
type Related struct {
	Father *models.Member
	Mother *models.Member
}

// Validate returns every violated constraint for m as human-readable
// messages. An empty slice means the record is acceptable.
func Validate(m *models.Member, rel Related, now time.Time) []string {
	var violations []string

	if m.FullName == "" {
		violations = append(violations, "full name is required")
	}
	switch m.Gender {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
	case "":
		violations = append(violations, "gender is required")
	default:
		violations = append(violations, "gender must be MALE, FEMALE, or OTHER")
	}
	if m.Hometown == "" {
		violations = append(violations, "hometown is required")
	}
	if m.Ethnicity == "" {
		violations = append(violations, "ethnicity is required")
	}
	if m.Nationality == "" {
		violations = append(violations, "nationality is required")
	}
	if m.FatherID == nil && m.MotherID == nil {
		violations = append(violations, "at least one of father or mother is required")
	}
	if m.Role == "" {
		violations = append(violations, "family role is required")
	}
	if m.Generation <= 0 {
		violations = append(violations, "generation is required")
	}

	if m.BirthDate != nil && m.BirthDate.After(now) {
		violations = append(violations, "birth date cannot be in the future")
	}
	if by, ok := dateutil.YearNumber(m.BirthYear); ok && by > now.Year() {
		violations = append(violations, "birth year cannot be after the current year")
	}

	// Death fields are only meaningful when the member is not alive.
	if !m.IsAlive {
		if m.DeathDate != nil {
			if m.DeathDate.After(now) {
				violations = append(violations, "death date cannot be in the future")
			}
			if m.BirthDate != nil && m.DeathDate.Before(*m.BirthDate) {
				violations = append(violations, "death date must be after the birth date")
			}
		}
		if dy, ok := dateutil.YearNumber(m.DeathYear); ok {
			if dy > now.Year() {
				violations = append(violations, "death year cannot be after the current year")
			}
			if by, ok := dateutil.YearNumber(m.BirthYear); ok && dy < by {
				violations = append(violations, "death year must be after the birth year")
			}
		}
	}

	// The original client checked the gap only against the father; the
	// asymmetry was an oversight, so both parents are checked here.
	if v, bad := parentGapViolation("father", rel.Father, m); bad {
		violations = append(violations, v)
	}
	if v, bad := parentGapViolation("mother", rel.Mother, m); bad {
		violations = append(violations, v)
	}

	return violations
}

// parentGapViolation checks the parent/child birth-year gap when both years
// are recorded as plain integers; free-text years are skipped.
func parentGapViolation(label string, parent *models.Member, m *models.Member) (string, bool) {
	if parent == nil {
		return "", false
	}
	parentYear, ok := dateutil.YearNumber(parent.BirthYear)
	if !ok || parentYear <= 0 {
		return "", false
	}
	childYear, ok := dateutil.YearNumber(m.BirthYear)
	if !ok {
		return "", false
	}
	if childYear-parentYear < MinParentAgeGap {
		return fmt.Sprintf("child must be born at least %d years after the %s", MinParentAgeGap, label), true
	}
	return "", false
}
