package indexes_test

import (
	"testing"

	"github.com/lineagehub/lineagehub/internal/app/system/indexes"
	"github.com/lineagehub/lineagehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users": {
			"uniq_users_emailci",
			"idx_users_fullnameci__id",
		},
		"family_trees": {
			"idx_trees_creator_nameci",
		},
		"memberships": {
			"uniq_memberships_user_tree",
			"idx_memberships_tree_role_user",
		},
		"members": {
			"idx_members_tree_generation_nameci",
			"idx_members_tree_spouse",
			"idx_members_tree_father",
			"idx_members_tree_mother",
		},
	}

	for collName, want := range expected {
		cur, err := db.Collection(collName).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("List indexes on %s failed: %v", collName, err)
		}
		names := make(map[string]bool)
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			if name, ok := idx["name"].(string); ok {
				names[name] = true
			}
		}
		cur.Close(ctx)

		for _, name := range want {
			if !names[name] {
				t.Errorf("expected index %q to exist on %s collection", name, collName)
			}
		}
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{"email_ci": "a@example.com", "email": "a@example.com"})
	if err != nil {
		t.Fatalf("Insert user failed: %v", err)
	}

	// Same folded email must be rejected by the unique index.
	_, err = db.Collection("users").InsertOne(ctx, bson.M{"email_ci": "a@example.com", "email": "A@Example.com"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on users.email_ci")
	}
}
