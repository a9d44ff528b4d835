// Package accounts implements registration, session login/logout, and the
// current-user endpoint.
package accounts

import (
	users "github.com/lineagehub/lineagehub/internal/app/store/users"
	"github.com/lineagehub/lineagehub/internal/app/system/auditlog"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler bundles the dependencies for the account endpoints.
// Limits and Audit are optional; both are nil-safe.
type Handler struct {
	Users    *users.Store
	Sessions *auth.SessionManager
	Limits   *ratelimit.LoginLimiter
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs an accounts Handler.
func NewHandler(users *users.Store, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Sessions: sessions,
		Log:      logger,
	}
}
