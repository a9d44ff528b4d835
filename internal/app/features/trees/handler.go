// Package trees implements family tree CRUD and collaborator membership
// management.
package trees

import (
	"net/http"

	membershipstore "github.com/lineagehub/lineagehub/internal/app/store/memberships"
	treestore "github.com/lineagehub/lineagehub/internal/app/store/trees"
	"github.com/lineagehub/lineagehub/internal/app/system/auditlog"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler bundles the dependencies for the tree endpoints.
// Audit is optional and nil-safe.
type Handler struct {
	DB          *mongo.Database
	Trees       *treestore.Store
	Memberships *membershipstore.Store
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs a trees Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Trees:       treestore.New(db),
		Memberships: membershipstore.New(db),
		Log:         logger,
	}
}

// caller extracts the signed-in user's id, writing a 401 when the session
// is absent or carries a malformed id.
func caller(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpapi.Unauthorized(w)
		return primitive.NilObjectID, false
	}
	uid, ok := su.UserID()
	if !ok {
		httpapi.Unauthorized(w)
		return primitive.NilObjectID, false
	}
	return uid, true
}

// treeID parses the {treeID} route parameter, writing a 404 for malformed
// ids so unroutable URLs look the same as missing trees.
func treeID(w http.ResponseWriter, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httpapi.NotFound(w)
		return primitive.NilObjectID, false
	}
	return id, true
}
