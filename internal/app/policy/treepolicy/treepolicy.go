// Package treepolicy provides authorization policies for family-tree
// scoped routes.
//
// Authorization rules:
//   - A tree's creator can always read and write it, membership or not
//   - Any user holding a Membership for the tree can read and write it
//   - Only the creator or an "owner" membership may manage memberships
package treepolicy

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanAccessTree reports whether userID may read and write the tree's
// members: true when the user holds a Membership for the tree or created
// it. Returns an error only if a database operation fails.
func CanAccessTree(ctx context.Context, db *mongo.Database, userID, treeID primitive.ObjectID) (bool, error) {
	err := db.Collection("memberships").FindOne(ctx, bson.M{
		"user_id":        userID,
		"family_tree_id": treeID,
	}).Err()
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	return isCreator(ctx, db, userID, treeID)
}

// CanManageMemberships reports whether userID may grant or revoke access
// to the tree: the creator, or a member holding the "owner" role.
func CanManageMemberships(ctx context.Context, db *mongo.Database, userID, treeID primitive.ObjectID) (bool, error) {
	err := db.Collection("memberships").FindOne(ctx, bson.M{
		"user_id":        userID,
		"family_tree_id": treeID,
		"role":           "owner",
	}).Err()
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	return isCreator(ctx, db, userID, treeID)
}

func isCreator(ctx context.Context, db *mongo.Database, userID, treeID primitive.ObjectID) (bool, error) {
	err := db.Collection("family_trees").FindOne(ctx, bson.M{
		"_id":        treeID,
		"creator_id": userID,
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}
