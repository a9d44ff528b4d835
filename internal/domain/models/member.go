// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a person record within a family tree, carrying biographical
// fields and familial relationship references.
//
// NOTE:
//   - Year fields are stored as strings because they arrive as free text
//     ("1950", "khoảng 1920"); dateutil derives them from exact dates when
//     one is known.
//   - FatherID/MotherID/SpouseID are nil when the relationship is absent.
//     ChildrenIDs is maintained by the member store as a set: every member
//     referencing this one as father or mother appears exactly once.
//   - JSON tags use the camelCase wire names the web client sends; bson
//     tags follow the collection's snake_case convention.
type Member struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyTreeID primitive.ObjectID `bson:"family_tree_id" json:"familyTreeId"`

	FullName   string `bson:"full_name" json:"fullName"`
	FullNameCI string `bson:"full_name_ci" json:"-"`
	Gender     string `bson:"gender" json:"gender"` // MALE | FEMALE | OTHER

	BirthYear      string     `bson:"birth_year,omitempty" json:"birthYear,omitempty"`
	BirthDate      *time.Time `bson:"birth_date,omitempty" json:"birthDate,omitempty"`
	BirthDateLunar string     `bson:"birth_date_lunar,omitempty" json:"birthDateLunar,omitempty"`
	BirthPlace     string     `bson:"birth_place,omitempty" json:"birthPlace,omitempty"`

	DeathYear      string     `bson:"death_year,omitempty" json:"deathYear,omitempty"`
	DeathDate      *time.Time `bson:"death_date,omitempty" json:"deathDate,omitempty"`
	DeathDateLunar string     `bson:"death_date_lunar,omitempty" json:"deathDateLunar,omitempty"`
	DeathPlace     string     `bson:"death_place,omitempty" json:"deathPlace,omitempty"`

	IsAlive    bool   `bson:"is_alive" json:"isAlive"`
	Generation int    `bson:"generation" json:"generation"`
	Role       string `bson:"role,omitempty" json:"role,omitempty"` // family role label, e.g. "Trưởng nam"
	Title      string `bson:"title,omitempty" json:"title,omitempty"`

	Biography   string `bson:"biography,omitempty" json:"biography,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
	Occupation  string `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
	Hometown    string `bson:"hometown,omitempty" json:"hometown,omitempty"`
	Ethnicity   string `bson:"ethnicity,omitempty" json:"ethnicity,omitempty"`
	Nationality string `bson:"nationality,omitempty" json:"nationality,omitempty"`
	Religion    string `bson:"religion,omitempty" json:"religion,omitempty"`

	FatherID    *primitive.ObjectID  `bson:"father_id,omitempty" json:"fatherId,omitempty"`
	MotherID    *primitive.ObjectID  `bson:"mother_id,omitempty" json:"motherId,omitempty"`
	SpouseID    *primitive.ObjectID  `bson:"spouse_id,omitempty" json:"spouseId,omitempty"`
	ChildrenIDs []primitive.ObjectID `bson:"children_ids,omitempty" json:"childrenIds,omitempty"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"createdById"`
	UpdatedByID primitive.ObjectID `bson:"updated_by_id" json:"updatedById"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Gender values for Member.Gender.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)
