package accounts

import (
	"errors"
	"net/http"

	users "github.com/lineagehub/lineagehub/internal/app/store/users"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"github.com/lineagehub/lineagehub/internal/app/system/inputval"
	"github.com/lineagehub/lineagehub/internal/app/system/normalize"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /api/auth/register.
//
// Creates the account and establishes a session in the same response, so a
// fresh registration lands signed in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w)
		return
	}

	req.FullName = normalize.Name(req.FullName)
	req.Email = normalize.Email(req.Email)

	var violations []string
	if !inputval.IsValidFullName(req.FullName) {
		violations = append(violations, "full name is required")
	}
	if !inputval.IsValidEmail(req.Email) {
		violations = append(violations, "a valid email address is required")
	}
	if len(req.Password) < minPasswordLen {
		violations = append(violations, "password must be at least 8 characters")
	}
	if len(violations) > 0 {
		httpapi.ValidationFailed(w, violations)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("bcrypt hash failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}

	user, err := h.Users.Create(r.Context(), models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			httpapi.Conflict(w)
			return
		}
		h.Log.Error("create user failed", zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Audit.UserRegistered(r.Context(), r, user.ID)

	if err := h.Sessions.SignIn(w, r, sessionUserFor(user)); err != nil {
		h.Log.Error("sign-in after register failed",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Log.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))

	httpapi.WriteJSON(w, http.StatusCreated, user)
}
