// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Routes mounts all roster routes under the path where the caller
// mounts it. Typically: r.Mount("/members", members.Routes(handler)).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	// Add / Upload
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)
	r.Get("/upload_csv", h.ServeUploadCSV)
	r.Post("/upload_csv", h.HandleUploadCSV)

	// View / Edit / Toggle / Delete single member
	r.Get("/{id}/view", h.ServeView)
	r.Get("/{id}/edit", h.ServeEdit)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/toggle_active", h.HandleToggleActive)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
