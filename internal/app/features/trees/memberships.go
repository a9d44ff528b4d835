package trees

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lineagehub/lineagehub/internal/app/policy/treepolicy"
	membershipstore "github.com/lineagehub/lineagehub/internal/app/store/memberships"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type addMembershipRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// requireManager runs the owner-or-creator check shared by the membership
// endpoints.
func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) (callerID, tid primitive.ObjectID, ok bool) {
	uid, ok := caller(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	tid, ok = treeID(w, chi.URLParam(r, "treeID"))
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	allowed, err := treepolicy.CanManageMemberships(r.Context(), h.DB, uid, tid)
	if err != nil {
		h.Log.Error("membership management check failed", zap.Error(err))
		httpapi.Internal(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	if !allowed {
		httpapi.Forbidden(w)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return uid, tid, true
}

// HandleAddMembership handles POST /api/family-trees/{treeID}/memberships.
func (h *Handler) HandleAddMembership(w http.ResponseWriter, r *http.Request) {
	callerID, tid, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	var req addMembershipRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpapi.ValidationFailed(w, []string{"userId must be a valid id"})
		return
	}
	if req.Role == "" {
		req.Role = "viewer"
	}

	if err := h.Memberships.Add(r.Context(), targetID, tid, req.Role); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			httpapi.Conflict(w)
			return
		}
		h.Log.Error("add membership failed",
			zap.String("tree_id", tid.Hex()),
			zap.String("target_user_id", targetID.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Audit.MembershipGranted(r.Context(), r, callerID, targetID, tid, req.Role)
	h.Log.Info("membership granted",
		zap.String("tree_id", tid.Hex()),
		zap.String("target_user_id", targetID.Hex()),
		zap.String("role", req.Role),
		zap.String("granted_by", callerID.Hex()))

	httpapi.WriteJSON(w, http.StatusCreated, map[string]string{
		"userId": targetID.Hex(),
		"role":   req.Role,
	})
}

// ServeMemberships handles GET /api/family-trees/{treeID}/memberships.
func (h *Handler) ServeMemberships(w http.ResponseWriter, r *http.Request) {
	_, tid, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	ms, err := h.Memberships.ListForTree(r.Context(), tid)
	if err != nil {
		h.Log.Error("list memberships failed", zap.String("tree_id", tid.Hex()), zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, ms)
}

// HandleRemoveMembership handles
// DELETE /api/family-trees/{treeID}/memberships/{userID}.
func (h *Handler) HandleRemoveMembership(w http.ResponseWriter, r *http.Request) {
	callerID, tid, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpapi.NotFound(w)
		return
	}

	if err := h.Memberships.Remove(r.Context(), targetID, tid); err != nil {
		h.Log.Error("remove membership failed",
			zap.String("tree_id", tid.Hex()),
			zap.String("target_user_id", targetID.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Audit.MembershipRevoked(r.Context(), r, callerID, targetID, tid)
	h.Log.Info("membership revoked",
		zap.String("tree_id", tid.Hex()),
		zap.String("target_user_id", targetID.Hex()),
		zap.String("revoked_by", callerID.Hex()))

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
