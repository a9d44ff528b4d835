// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

var errBadRole = errors.New(`role must be "owner", "editor" or "viewer"`)

// ErrDuplicateMembership is returned when the user already has access to
// the tree.
var ErrDuplicateMembership = errors.New("user already has access to this family tree")

// Add grants userID access to treeID with the given role.
func (s *Store) Add(ctx context.Context, userID, treeID primitive.ObjectID, role string) error {
	switch role {
	case "owner", "editor", "viewer":
	default:
		return errBadRole
	}

	doc := models.Membership{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		FamilyTreeID: treeID,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove revokes userID's access to treeID. Removing an absent membership
// is not an error.
func (s *Store) Remove(ctx context.Context, userID, treeID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "family_tree_id": treeID})
	return err
}

// Exists reports whether userID holds a membership for treeID.
func (s *Store) Exists(ctx context.Context, userID, treeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "family_tree_id": treeID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// ListForTree returns every membership of a tree in grant order.
func (s *Store) ListForTree(ctx context.Context, treeID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"family_tree_id": treeID})
	if err != nil {
		return nil, err
	}
	ms := []models.Membership{}
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}
