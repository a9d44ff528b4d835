// internal/domain/models/familytree.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FamilyTree is the top-level container owning a set of members and
// memberships. The creator always has access even without a membership
// document.
type FamilyTree struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creatorId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
