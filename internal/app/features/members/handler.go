// Package members implements the member record endpoints: listing,
// create/update/delete with relationship fix-ups, the eligible-spouse
// selector, and portrait upload.
package members

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/lineagehub/lineagehub/internal/app/policy/treepolicy"
	memberstore "github.com/lineagehub/lineagehub/internal/app/store/members"
	"github.com/lineagehub/lineagehub/internal/app/system/auditlog"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler bundles the dependencies for the member endpoints.
// Audit is optional and nil-safe.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	Members *memberstore.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler constructs a members Handler.
func NewHandler(db *mongo.Database, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Storage: store,
		Members: memberstore.New(db, logger),
		Log:     logger,
	}
}

// authorize resolves the caller and the {treeID} route parameter, and runs
// the tree access check. It writes the error response itself; callers bail
// out when ok is false.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (userID, treeID primitive.ObjectID, ok bool) {
	su, found := auth.CurrentUser(r)
	if !found {
		httpapi.Unauthorized(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	uid, found := su.UserID()
	if !found {
		httpapi.Unauthorized(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	tid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "treeID"))
	if err != nil {
		// A malformed id can never name a tree; same response as missing.
		httpapi.NotFound(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	allowed, err := treepolicy.CanAccessTree(r.Context(), h.DB, uid, tid)
	if err != nil {
		h.Log.Error("tree access check failed",
			zap.String("tree_id", tid.Hex()),
			zap.String("user_id", uid.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	if !allowed {
		httpapi.Forbidden(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	return uid, tid, true
}

// memberID parses the {memberID} route parameter, writing a 404 for
// malformed ids.
func memberID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		httpapi.NotFound(w)
		return primitive.NilObjectID, false
	}
	return id, true
}
