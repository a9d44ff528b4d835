// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the member subrouter. It is mounted under
// /api/family-trees/{treeID}/members, so every handler reads the treeID
// parameter from the parent route context. Sign-in is enforced by the
// parent router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/export", h.ServeExportCSV)
	r.Get("/{memberID}", h.ServeGet)
	r.Put("/{memberID}", h.HandleUpdate)
	r.Delete("/{memberID}", h.HandleDelete)
	r.Get("/{memberID}/eligible-spouses", h.ServeEligibleSpouses)

	return r
}
