package documents

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the document management endpoints.
//
// When mounted at /api/documents:
//   - GET    /api/documents           - paginated search (q, folder, tags)
//   - POST   /api/documents           - register a document, upserts its folder
//   - DELETE /api/documents           - best-effort bulk delete
//   - PUT    /api/documents/move-copy - batch move/copy between folders
//   - GET    /api/documents/{id}      - fetch one document
//   - PUT    /api/documents/{id}      - update, re-syncs folder membership
//   - DELETE /api/documents/{id}      - delete record and remote asset
//
// API key auth and identity loading are applied by the parent router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/", h.bulkDelete)

	r.Put("/move-copy", h.moveCopy)

	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.deleteOne)

	return r
}
