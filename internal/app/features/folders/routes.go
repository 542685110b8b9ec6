package folders

import (
	"net/http"

	"github.com/clubvault/clubvault/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the folder management endpoints.
//
// When mounted at /api/folders:
//   - GET    /api/folders                    - list folders with document counts
//   - POST   /api/folders                    - create a folder
//   - DELETE /api/folders                    - bulk cascading delete (admin)
//   - GET    /api/folders/{folder}           - fetch one folder by name
//   - GET    /api/folders/{folder}/documents - list a folder's documents
//   - PUT    /api/folders/{folder}           - full update by id, renames cascade
//   - PATCH  /api/folders/{folder}           - partial update by id, renames cascade
//   - DELETE /api/folders/{folder}           - cascading delete by id (admin)
//   - DELETE /api/folders/{folder}/empty     - delete by id only if empty
//
// The {folder} segment is a folder name for GETs and a folder id for writes.
// API key auth and identity loading are applied by the parent router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.list)
	r.Post("/", h.create)

	r.Get("/{folder}", h.getByName)
	r.Get("/{folder}/documents", h.listDocuments)

	r.Put("/{folder}", h.update)
	r.Patch("/{folder}", h.patch)
	r.Delete("/{folder}/empty", h.deleteEmpty)

	// Cascading deletes destroy documents and remote assets; admin only.
	r.Group(func(ar chi.Router) {
		ar.Use(authz.RequireRole("admin"))
		ar.Delete("/", h.bulkDelete)
		ar.Delete("/{folder}", h.deleteCascade)
	})

	return r
}
