package members

import (
	"errors"
	"net/http"
	"time"

	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"github.com/lineagehub/lineagehub/internal/app/system/memberval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleUpdate handles PUT /api/family-trees/{treeID}/members/{memberID}.
//
// The payload carries the full editable record. Server-maintained fields
// (children set, creator, created-at) are preserved by the store; stale
// relationship links are reconciled against the previous state there too.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, tid, ok := h.authorize(w, r)
	if !ok {
		return
	}
	mid, ok := memberID(w, r)
	if !ok {
		return
	}

	var payload memberPayload
	if err := httpapi.Decode(r, &payload); err != nil {
		httpapi.BadRequest(w)
		return
	}

	m := payload.toModel(h.Log)
	m.ID = mid
	m.FamilyTreeID = tid
	m.UpdatedByID = uid

	rel, err := h.resolveRelatives(r.Context(), tid, &m)
	if err != nil {
		h.Log.Error("resolve relatives failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}

	if violations := memberval.Validate(&m, rel, time.Now().UTC()); len(violations) > 0 {
		httpapi.ValidationFailed(w, violations)
		return
	}

	updated, err := h.Members.Update(r.Context(), m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.NotFound(w)
			return
		}
		h.Log.Error("update member failed",
			zap.String("member_id", mid.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Audit.MemberUpdated(r.Context(), r, uid, tid, mid)
	h.Log.Info("member updated",
		zap.String("member_id", mid.Hex()),
		zap.String("tree_id", tid.Hex()),
		zap.String("updated_by", uid.Hex()))

	httpapi.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/family-trees/{treeID}/members/{memberID}.
// Dangling references to the removed member are cleared in the same
// operation.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, tid, ok := h.authorize(w, r)
	if !ok {
		return
	}
	mid, ok := memberID(w, r)
	if !ok {
		return
	}

	if err := h.Members.Delete(r.Context(), tid, mid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpapi.NotFound(w)
			return
		}
		h.Log.Error("delete member failed",
			zap.String("member_id", mid.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Audit.MemberDeleted(r.Context(), r, uid, tid, mid)
	h.Log.Info("member deleted",
		zap.String("member_id", mid.Hex()),
		zap.String("tree_id", tid.Hex()),
		zap.String("deleted_by", uid.Hex()))

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
