package accounts

import (
	"errors"
	"net/http"

	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionUserFor maps a persisted user onto the session shape.
func sessionUserFor(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}
}

// HandleLogin handles POST /api/auth/login.
//
// A wrong email and a wrong password return the same 401 so the endpoint
// does not confirm which addresses have accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w)
		return
	}

	if ok, reason := h.Limits.Check(r, req.Email); !ok {
		h.Audit.LoginFailedRateLimit(r.Context(), r, req.Email)
		httpapi.TooManyRequests(w, []string{reason})
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("login lookup failed", zap.Error(err))
			httpapi.Internal(w)
			return
		}
		h.Audit.LoginFailedUserNotFound(r.Context(), r, req.Email)
		httpapi.Unauthorized(w)
		return
	}

	if user.Status == "disabled" {
		h.Log.Info("login rejected for disabled account",
			zap.String("user_id", user.ID.Hex()))
		h.Audit.LoginFailedUserDisabled(r.Context(), r, user.ID)
		httpapi.Unauthorized(w)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.Audit.LoginFailedWrongPassword(r.Context(), r, user.ID)
		httpapi.Unauthorized(w)
		return
	}

	if err := h.Sessions.SignIn(w, r, sessionUserFor(*user)); err != nil {
		h.Log.Error("sign-in failed",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Limits.ResetEmail(req.Email)
	h.Audit.LoginSuccess(r.Context(), r, user.ID)
	h.Log.Info("user signed in", zap.String("user_id", user.ID.Hex()))

	httpapi.WriteJSON(w, http.StatusOK, user)
}

// HandleLogout handles POST /api/auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	su, signedIn := auth.CurrentUser(r)
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Error("sign-out failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}
	if signedIn {
		if uid, err := primitive.ObjectIDFromHex(su.ID); err == nil {
			h.Audit.Logout(r.Context(), r, uid)
		}
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
