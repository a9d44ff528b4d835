package members

import (
	"errors"
	"net/http"

	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeList handles GET /api/family-trees/{treeID}/members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, tid, ok := h.authorize(w, r)
	if !ok {
		return
	}

	members, err := h.Members.ListByTree(r.Context(), tid)
	if err != nil {
		h.Log.Error("list members failed", zap.String("tree_id", tid.Hex()), zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, members)
}

// ServeGet handles GET /api/family-trees/{treeID}/members/{memberID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	_, tid, ok := h.authorize(w, r)
	if !ok {
		return
	}
	mid, ok := memberID(w, r)
	if !ok {
		return
	}

	m, err := h.Members.GetInTree(r.Context(), tid, mid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.NotFound(w)
			return
		}
		h.Log.Error("load member failed", zap.String("member_id", mid.Hex()), zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, m)
}
