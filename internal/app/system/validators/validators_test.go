package validators

import (
	"testing"
	"time"

	"github.com/lineagehub/lineagehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "family_trees", "memberships", "members", "audit_events"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_MembershipValidatorRejectsBadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("memberships").InsertOne(ctx, bson.M{
		"user_id":        primitive.NewObjectID(),
		"family_tree_id": primitive.NewObjectID(),
		"role":           "superuser",
		"created_at":     time.Now().UTC(),
	})
	if err == nil {
		t.Skip("server accepted invalid document; validators unsupported on this deployment")
	}
}

func TestEnsureAll_MembershipValidatorAcceptsGoodDoc(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("memberships").InsertOne(ctx, bson.M{
		"user_id":        primitive.NewObjectID(),
		"family_tree_id": primitive.NewObjectID(),
		"role":           "viewer",
		"created_at":     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("expected valid document to insert: %v", err)
	}
}
