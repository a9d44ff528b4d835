package treestore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/lineagehub/lineagehub/internal/app/system/normalize"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c           *mongo.Collection
	memberships *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("family_trees"),
		memberships: db.Collection("memberships"),
	}
}

// GetByID loads a family tree by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FamilyTree, error) {
	var t models.FamilyTree
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new family tree owned by creatorID.
func (s *Store) Create(ctx context.Context, t models.FamilyTree) (models.FamilyTree, error) {
	t.ID = primitive.NewObjectID()
	t.Name = normalize.Name(t.Name)
	t.NameCI = text.Fold(t.Name)

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.FamilyTree{}, err
	}
	return t, nil
}

// ListForUser returns trees the user created plus trees the user holds a
// membership for, in creation order.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.FamilyTree, error) {
	cur, err := s.memberships.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var ms []models.Membership
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}

	treeIDs := make([]primitive.ObjectID, 0, len(ms))
	for _, m := range ms {
		treeIDs = append(treeIDs, m.FamilyTreeID)
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userID},
		bson.M{"_id": bson.M{"$in": treeIDs}},
	}}
	cur, err = s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	trees := []models.FamilyTree{}
	if err := cur.All(ctx, &trees); err != nil {
		return nil, err
	}
	return trees, nil
}
