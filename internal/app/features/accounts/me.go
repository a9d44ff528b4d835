package accounts

import (
	"errors"
	"net/http"

	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeMe handles GET /api/auth/me. The session names a user; the response
// is the current database record, so a rename or disable shows up without
// waiting for re-login.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpapi.Unauthorized(w)
		return
	}
	uid, ok := su.UserID()
	if !ok {
		httpapi.Unauthorized(w)
		return
	}

	user, err := h.Users.GetByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Session survived the account; treat as signed out.
			httpapi.Unauthorized(w)
			return
		}
		h.Log.Error("load current user failed",
			zap.String("user_id", su.ID),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, user)
}
