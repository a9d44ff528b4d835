package members

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/lineagehub/lineagehub/internal/app/system/dateutil"
	"github.com/lineagehub/lineagehub/internal/app/system/htmlsanitize"
	"github.com/lineagehub/lineagehub/internal/app/system/normalize"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// relationNone is the sentinel the web client sends for "no relationship
// selected". It is treated the same as an empty string.
const relationNone = "none"

// flexInt accepts a JSON number or a numeric string. The entry form posts
// generation as text, other clients send a number.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Unparseable generation surfaces as 0, which validation rejects
		// with a readable message instead of a decode failure.
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// memberPayload is the wire shape for create and update. Dates arrive as
// RFC 3339 or dd-mm-yyyy text; relationship ids as hex strings or the
// "none" sentinel.
type memberPayload struct {
	FullName       string  `json:"fullName"`
	Gender         string  `json:"gender"`
	BirthYear      string  `json:"birthYear"`
	BirthDate      string  `json:"birthDate"`
	BirthDateLunar string  `json:"birthDateLunar"`
	BirthPlace     string  `json:"birthPlace"`
	DeathYear      string  `json:"deathYear"`
	DeathDate      string  `json:"deathDate"`
	DeathDateLunar string  `json:"deathDateLunar"`
	DeathPlace     string  `json:"deathPlace"`
	IsAlive        *bool   `json:"isAlive"`
	Generation     flexInt `json:"generation"`
	Role           string  `json:"role"`
	Title          string  `json:"title"`
	Biography      string  `json:"biography"`
	Image          string  `json:"image"`
	Occupation     string  `json:"occupation"`
	Notes          string  `json:"notes"`
	Hometown       string  `json:"hometown"`
	Ethnicity      string  `json:"ethnicity"`
	Nationality    string  `json:"nationality"`
	Religion       string  `json:"religion"`
	FatherID       string  `json:"fatherId"`
	MotherID       string  `json:"motherId"`
	SpouseID       string  `json:"spouseId"`
}

// parseRelation maps a relationship field onto an optional ObjectID.
// Empty and "none" mean absent; a malformed hex string is logged and also
// treated as absent rather than failing the request.
func parseRelation(log *zap.Logger, field, raw string) *primitive.ObjectID {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == relationNone {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		log.Warn("ignoring malformed relationship id",
			zap.String("field", field),
			zap.String("value", raw))
		return nil
	}
	return &id
}

// parseDate accepts RFC 3339 or dd-mm-yyyy text. Unparseable text returns
// nil, keeping whatever value the record already had.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	if t, ok := dateutil.ParseInput(raw); ok {
		return &t
	}
	return nil
}

// toModel maps the payload onto a member record. Relationship ids are
// parsed but not yet verified; resolveRelatives does that against the tree.
func (p *memberPayload) toModel(log *zap.Logger) models.Member {
	m := models.Member{
		FullName:       normalize.Name(p.FullName),
		Gender:         strings.ToUpper(strings.TrimSpace(p.Gender)),
		BirthYear:      normalize.Year(p.BirthYear),
		BirthDate:      parseDate(p.BirthDate),
		BirthDateLunar: strings.TrimSpace(p.BirthDateLunar),
		BirthPlace:     strings.TrimSpace(p.BirthPlace),
		DeathYear:      normalize.Year(p.DeathYear),
		DeathDate:      parseDate(p.DeathDate),
		DeathDateLunar: strings.TrimSpace(p.DeathDateLunar),
		DeathPlace:     strings.TrimSpace(p.DeathPlace),
		IsAlive:        true,
		Generation:     int(p.Generation),
		Role:           strings.TrimSpace(p.Role),
		Title:          strings.TrimSpace(p.Title),
		Biography:      htmlsanitize.Sanitize(p.Biography),
		Image:          strings.TrimSpace(p.Image),
		Occupation:     strings.TrimSpace(p.Occupation),
		Notes:          htmlsanitize.Sanitize(p.Notes),
		Hometown:       strings.TrimSpace(p.Hometown),
		Ethnicity:      strings.TrimSpace(p.Ethnicity),
		Nationality:    strings.TrimSpace(p.Nationality),
		Religion:       strings.TrimSpace(p.Religion),
		FatherID:       parseRelation(log, "fatherId", p.FatherID),
		MotherID:       parseRelation(log, "motherId", p.MotherID),
		SpouseID:       parseRelation(log, "spouseId", p.SpouseID),
	}

	if p.IsAlive != nil {
		m.IsAlive = *p.IsAlive
	}

	// Derive the display year from an exact date when the form left the
	// year blank.
	if m.BirthYear == "" && m.BirthDate != nil {
		m.BirthYear = dateutil.Year(*m.BirthDate)
	}
	if m.DeathYear == "" && m.DeathDate != nil {
		m.DeathYear = dateutil.Year(*m.DeathDate)
	}

	return m
}

var _ json.Unmarshaler = (*flexInt)(nil)
