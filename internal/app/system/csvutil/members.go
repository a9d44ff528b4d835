// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memberHeader is the column layout for member exports. Relationship columns
// carry ObjectID hex strings so a re-import can rebuild the links.
var memberHeader = []string{
	"Full Name", "Gender", "Generation",
	"Birth Year", "Birth Date", "Birth Place",
	"Death Year", "Death Date", "Death Place",
	"Is Alive", "Role", "Occupation", "Hometown",
	"Father ID", "Mother ID", "Spouse ID",
}

// WriteMembers writes the members of a tree as CSV, header row first.
// Dates render as YYYY-MM-DD; empty optional fields stay blank.
func WriteMembers(w io.Writer, members []models.Member) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(memberHeader); err != nil {
		return err
	}

	for _, m := range members {
		row := []string{
			m.FullName,
			m.Gender,
			strconv.Itoa(m.Generation),
			m.BirthYear,
			formatDate(m.BirthDate),
			m.BirthPlace,
			m.DeathYear,
			formatDate(m.DeathDate),
			m.DeathPlace,
			strconv.FormatBool(m.IsAlive),
			m.Role,
			m.Occupation,
			m.Hometown,
			formatRef(m.FatherID),
			formatRef(m.MotherID),
			formatRef(m.SpouseID),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatRef(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
