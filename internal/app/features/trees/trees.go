package trees

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lineagehub/lineagehub/internal/app/policy/treepolicy"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"github.com/lineagehub/lineagehub/internal/app/system/normalize"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type createTreeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate handles POST /api/family-trees.
//
// The creator also receives an explicit owner membership so role checks
// and collaborator listings have one shape to reason about.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}

	var req createTreeRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w)
		return
	}

	if normalize.Name(req.Name) == "" {
		httpapi.ValidationFailed(w, []string{"tree name is required"})
		return
	}

	tree, err := h.Trees.Create(r.Context(), models.FamilyTree{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   uid,
	})
	if err != nil {
		h.Log.Error("create tree failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}

	if err := h.Memberships.Add(r.Context(), uid, tree.ID, "owner"); err != nil {
		// The tree exists and the creator path still grants access, so
		// log and carry on rather than failing the create.
		h.Log.Warn("owner membership grant failed",
			zap.String("tree_id", tree.ID.Hex()),
			zap.Error(err))
	}

	h.Audit.TreeCreated(r.Context(), r, uid, tree.ID, tree.Name)
	h.Log.Info("family tree created",
		zap.String("tree_id", tree.ID.Hex()),
		zap.String("creator_id", uid.Hex()))

	httpapi.WriteJSON(w, http.StatusCreated, tree)
}

// ServeList handles GET /api/family-trees.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}

	trees, err := h.Trees.ListForUser(r.Context(), uid)
	if err != nil {
		h.Log.Error("list trees failed", zap.String("user_id", uid.Hex()), zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, trees)
}

// ServeGet handles GET /api/family-trees/{treeID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	tid, ok := treeID(w, chi.URLParam(r, "treeID"))
	if !ok {
		return
	}

	allowed, err := treepolicy.CanAccessTree(r.Context(), h.DB, uid, tid)
	if err != nil {
		h.Log.Error("tree access check failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}
	if !allowed {
		httpapi.Forbidden(w)
		return
	}

	tree, err := h.Trees.GetByID(r.Context(), tid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.NotFound(w)
			return
		}
		h.Log.Error("load tree failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, tree)
}
