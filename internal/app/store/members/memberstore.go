// Package memberstore persists member records and maintains their
// relationship invariants.
//
// Relationship writes ride together: creating or updating a member also
// fixes up the spouse back-link and the parents' children sets. On
// deployments with transaction support the fix-ups commit atomically with
// the member write; elsewhere they apply sequentially, and every fix-up is
// shaped so that re-applying it is a no-op (conditional spouse back-link,
// $addToSet children).
package memberstore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/lineagehub/lineagehub/internal/app/system/normalize"
	"github.com/lineagehub/lineagehub/internal/app/system/txn"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("members"), log: logger}
}

// ListByTree returns every member of a tree in stored order.
func (s *Store) ListByTree(ctx context.Context, treeID primitive.ObjectID) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{"family_tree_id": treeID})
	if err != nil {
		return nil, err
	}
	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// GetInTree loads a member by id scoped to a tree. Returns
// mongo.ErrNoDocuments when the member does not exist in that tree.
func (s *Store) GetInTree(ctx context.Context, treeID, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "family_tree_id": treeID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// EligibleSpouses returns the members of a tree sharing the given
// generation, excluding the member being edited. Purely a selector
// affordance; nothing is persisted.
func (s *Store) EligibleSpouses(ctx context.Context, treeID primitive.ObjectID, generation int, exclude primitive.ObjectID) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"family_tree_id": treeID,
		"generation":     generation,
		"_id":            bson.M{"$ne": exclude},
	})
	if err != nil {
		return nil, err
	}
	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Create inserts a new member and applies the relationship fix-ups.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.FullName = normalize.Name(m.FullName)
	m.FullNameCI = text.Fold(m.FullName)

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	client := s.c.Database().Client()
	err := txn.WithTransaction(ctx, client, s.log, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, m); err != nil {
			return err
		}
		return s.linkRelatives(ctx, &m)
	})
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// Update replaces a member's editable fields and reconciles relationship
// fix-ups against the previous state: stale back-links and children
// entries are removed before the new ones are written.
func (s *Store) Update(ctx context.Context, m models.Member) (models.Member, error) {
	prev, err := s.GetInTree(ctx, m.FamilyTreeID, m.ID)
	if err != nil {
		return models.Member{}, err
	}

	m.FullName = normalize.Name(m.FullName)
	m.FullNameCI = text.Fold(m.FullName)

	// Server-maintained fields survive the replace.
	m.ChildrenIDs = prev.ChildrenIDs
	m.CreatedByID = prev.CreatedByID
	m.CreatedAt = prev.CreatedAt
	m.UpdatedAt = time.Now().UTC()

	client := s.c.Database().Client()
	err = txn.WithTransaction(ctx, client, s.log, func(ctx context.Context) error {
		if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": m.ID, "family_tree_id": m.FamilyTreeID}, m); err != nil {
			return err
		}
		if err := s.unlinkStale(ctx, prev, &m); err != nil {
			return err
		}
		return s.linkRelatives(ctx, &m)
	})
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// Delete removes a member and clears every reference to it: the spouse
// back-link, the parents' children sets, and the father/mother fields of
// its children.
func (s *Store) Delete(ctx context.Context, treeID, id primitive.ObjectID) error {
	if _, err := s.GetInTree(ctx, treeID, id); err != nil {
		return err
	}

	client := s.c.Database().Client()
	return txn.WithTransaction(ctx, client, s.log, func(ctx context.Context) error {
		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "family_tree_id": treeID}); err != nil {
			return err
		}
		// Spouse back-link, only where it points at the deleted member.
		if _, err := s.c.UpdateMany(ctx,
			bson.M{"family_tree_id": treeID, "spouse_id": id},
			bson.M{"$unset": bson.M{"spouse_id": ""}}); err != nil {
			return err
		}
		// Parents' children sets.
		if _, err := s.c.UpdateMany(ctx,
			bson.M{"family_tree_id": treeID, "children_ids": id},
			bson.M{"$pull": bson.M{"children_ids": id}}); err != nil {
			return err
		}
		// Children referencing the deleted member as a parent.
		if _, err := s.c.UpdateMany(ctx,
			bson.M{"family_tree_id": treeID, "father_id": id},
			bson.M{"$unset": bson.M{"father_id": ""}}); err != nil {
			return err
		}
		if _, err := s.c.UpdateMany(ctx,
			bson.M{"family_tree_id": treeID, "mother_id": id},
			bson.M{"$unset": bson.M{"mother_id": ""}}); err != nil {
			return err
		}
		return nil
	})
}

// linkRelatives applies the forward fix-ups for m's relationships.
func (s *Store) linkRelatives(ctx context.Context, m *models.Member) error {
	if m.SpouseID != nil {
		// Back-link only when the spouse has no spouse yet (or already
		// points at m). An established link to someone else is left alone
		// rather than overwritten by the last writer.
		filter := bson.M{
			"_id":            *m.SpouseID,
			"family_tree_id": m.FamilyTreeID,
			"$or": bson.A{
				bson.M{"spouse_id": bson.M{"$exists": false}},
				bson.M{"spouse_id": nil},
				bson.M{"spouse_id": m.ID},
			},
		}
		res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"spouse_id": m.ID}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			s.log.Warn("spouse back-link skipped; target already linked elsewhere",
				zap.String("member_id", m.ID.Hex()),
				zap.String("spouse_id", m.SpouseID.Hex()))
		}
	}

	for _, pid := range []*primitive.ObjectID{m.FatherID, m.MotherID} {
		if pid == nil {
			continue
		}
		if _, err := s.c.UpdateOne(ctx,
			bson.M{"_id": *pid, "family_tree_id": m.FamilyTreeID},
			bson.M{"$addToSet": bson.M{"children_ids": m.ID}}); err != nil {
			return err
		}
	}
	return nil
}

// unlinkStale removes fix-ups belonging to relationships the update
// dropped or redirected.
func (s *Store) unlinkStale(ctx context.Context, prev, next *models.Member) error {
	if prev.SpouseID != nil && (next.SpouseID == nil || *next.SpouseID != *prev.SpouseID) {
		// Clear the old back-link only where it still points at this member.
		if _, err := s.c.UpdateOne(ctx,
			bson.M{"_id": *prev.SpouseID, "spouse_id": prev.ID},
			bson.M{"$unset": bson.M{"spouse_id": ""}}); err != nil {
			return err
		}
	}

	stale := func(old, cur *primitive.ObjectID) bool {
		return old != nil && (cur == nil || *cur != *old)
	}
	if stale(prev.FatherID, next.FatherID) {
		if _, err := s.c.UpdateOne(ctx,
			bson.M{"_id": *prev.FatherID},
			bson.M{"$pull": bson.M{"children_ids": prev.ID}}); err != nil {
			return err
		}
	}
	if stale(prev.MotherID, next.MotherID) {
		if _, err := s.c.UpdateOne(ctx,
			bson.M{"_id": *prev.MotherID},
			bson.M{"$pull": bson.M{"children_ids": prev.ID}}); err != nil {
			return err
		}
	}
	return nil
}
