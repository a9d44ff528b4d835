package members

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"github.com/lineagehub/lineagehub/internal/app/system/memberval"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// resolveRelatives verifies each referenced relative exists in the same
// tree. A reference to a missing member is logged and dropped, mirroring
// how malformed ids are handled, so a record can never point outside its
// tree. The loaded parents feed the validation age-gap rules.
func (h *Handler) resolveRelatives(ctx context.Context, tid primitive.ObjectID, m *models.Member) (memberval.Related, error) {
	var rel memberval.Related

	load := func(field string, idp **primitive.ObjectID) (*models.Member, error) {
		if *idp == nil {
			return nil, nil
		}
		found, err := h.Members.GetInTree(ctx, tid, **idp)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				h.Log.Warn("dropping reference to missing member",
					zap.String("field", field),
					zap.String("member_id", (*idp).Hex()),
					zap.String("tree_id", tid.Hex()))
				*idp = nil
				return nil, nil
			}
			return nil, err
		}
		return found, nil
	}

	var err error
	if rel.Father, err = load("fatherId", &m.FatherID); err != nil {
		return rel, err
	}
	if rel.Mother, err = load("motherId", &m.MotherID); err != nil {
		return rel, err
	}
	if _, err = load("spouseId", &m.SpouseID); err != nil {
		return rel, err
	}

	// A member can't be their own spouse; the form never offers it but the
	// API could be handed it directly.
	if m.SpouseID != nil && *m.SpouseID == m.ID {
		h.Log.Warn("dropping self-referential spouse",
			zap.String("member_id", m.ID.Hex()))
		m.SpouseID = nil
	}

	return rel, nil
}

// HandleCreate handles POST /api/family-trees/{treeID}/members.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, tid, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var payload memberPayload
	if err := httpapi.Decode(r, &payload); err != nil {
		httpapi.BadRequest(w)
		return
	}

	m := payload.toModel(h.Log)
	m.FamilyTreeID = tid
	m.CreatedByID = uid
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

	created, err := h.Members.Create(r.Context(), m)
	if err != nil {
		h.Log.Error("create member failed",
			zap.String("tree_id", tid.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Audit.MemberCreated(r.Context(), r, uid, tid, created.ID)
	h.Log.Info("member created",
		zap.String("member_id", created.ID.Hex()),
		zap.String("tree_id", tid.Hex()),
		zap.String("created_by", uid.Hex()))

	httpapi.WriteJSON(w, http.StatusOK, created)
}
