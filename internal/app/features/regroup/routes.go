// internal/app/features/regroup/routes.go
package regroup

import "github.com/go-chi/chi/v5"

// Routes mounts the group generation routes. Typically:
// r.Mount("/groups", regroup.Routes(handler)).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeGroups)
	r.Post("/generate", h.HandleGenerate)
	r.Post("/clear", h.HandleClear)

	r.Get("/export.csv", h.HandleExportCSV)
	r.Get("/export.md", h.HandleExportMarkdown)

	return r
}
