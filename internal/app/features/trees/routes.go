// internal/app/features/trees/routes.go
package trees

import (
	"github.com/go-chi/chi/v5"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
)

// Routes returns a subrouter for the family tree endpoints, mounted under
// /api/family-trees. The members subrouter handles everything below
// /{treeID}/members.
func Routes(h *Handler, members chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{treeID}", h.ServeGet)

	r.Get("/{treeID}/memberships", h.ServeMemberships)
	r.Post("/{treeID}/memberships", h.HandleAddMembership)
	r.Delete("/{treeID}/memberships/{userID}", h.HandleRemoveMembership)

	r.Mount("/{treeID}/members", members)

	return r
}
