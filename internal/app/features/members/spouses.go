package members

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeEligibleSpouses handles
// GET /api/family-trees/{treeID}/members/{memberID}/eligible-spouses.
//
// Returns the tree's members sharing a generation with the member,
// excluding the member themselves. An explicit ?generation=N overrides the
// member's own generation, which the entry form uses while the field is
// being edited.
func (h *Handler) ServeEligibleSpouses(w http.ResponseWriter, r *http.Request) {
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

	generation := m.Generation
	if raw := r.URL.Query().Get("generation"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpapi.ValidationFailed(w, []string{"generation must be a number"})
			return
		}
		generation = n
	}

	candidates, err := h.Members.EligibleSpouses(r.Context(), tid, generation, mid)
	if err != nil {
		h.Log.Error("eligible spouses query failed",
			zap.String("member_id", mid.Hex()),
			zap.Int("generation", generation),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, candidates)
}
