package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	if rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context); ok {
		rctx.URLParams.Add(key, value)
		return r
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name, email, and password.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: string(hash),
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Status:     "disabled",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create disabled test user: %v", err)
	}

	return user
}

// CreateTree creates a test family tree owned by the given creator.
func (f *Fixtures) CreateTree(ctx context.Context, name string, creatorID primitive.ObjectID) models.FamilyTree {
	f.t.Helper()

	now := time.Now().UTC()
	tree := models.FamilyTree{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test tree description",
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("family_trees").InsertOne(ctx, tree); err != nil {
		f.t.Fatalf("failed to create test family tree: %v", err)
	}

	return tree
}

// CreateMembership creates a membership record linking a user to a tree.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, treeID primitive.ObjectID, role string) models.Membership {
	f.t.Helper()

	membership := models.Membership{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		FamilyTreeID: treeID,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}

	return membership
}

// CreateMember creates a minimal living member in the given tree.
// createdBy is also recorded as the updater.
func (f *Fixtures) CreateMember(ctx context.Context, treeID primitive.ObjectID, fullName, gender string, generation int, createdBy primitive.ObjectID) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:           primitive.NewObjectID(),
		FamilyTreeID: treeID,
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Gender:       gender,
		IsAlive:      true,
		Generation:   generation,
		CreatedByID:  createdBy,
		UpdatedByID:  createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}

	return m
}

// CreateMemberWithBirthYear creates a member with a known birth year, for
// validation-adjacent tests.
func (f *Fixtures) CreateMemberWithBirthYear(ctx context.Context, treeID primitive.ObjectID, fullName, gender, birthYear string, generation int, createdBy primitive.ObjectID) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:           primitive.NewObjectID(),
		FamilyTreeID: treeID,
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Gender:       gender,
		BirthYear:    birthYear,
		IsAlive:      true,
		Generation:   generation,
		CreatedByID:  createdBy,
		UpdatedByID:  createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}

	return m
}

// GetMember reloads a member by ID, failing the test when it is missing.
func (f *Fixtures) GetMember(ctx context.Context, id primitive.ObjectID) models.Member {
	f.t.Helper()

	var m models.Member
	if err := f.db.Collection("members").FindOne(ctx, primitiveIDFilter(id)).Decode(&m); err != nil {
		f.t.Fatalf("failed to reload member %s: %v", id.Hex(), err)
	}
	return m
}

func primitiveIDFilter(id primitive.ObjectID) map[string]any {
	return map[string]any{"_id": id}
}
