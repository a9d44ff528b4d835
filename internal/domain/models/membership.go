// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership is the authoritative join between users and family trees.
// Exactly one document per (user_id, family_tree_id); role is a scalar.
type Membership struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	FamilyTreeID primitive.ObjectID `bson:"family_tree_id" json:"familyTreeId"`
	Role         string             `bson:"role" json:"role"` // "owner" | "editor" | "viewer"
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}
