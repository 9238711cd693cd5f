// internal/app/features/attendance/routes.go
package attendance

import "github.com/go-chi/chi/v5"

// Routes mounts the attendance sheet under /attendance.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeSheet)
	r.Post("/{id}/present", h.HandleTogglePresent)
	r.Post("/{id}/prep", h.HandleTogglePrep)
	r.Post("/{id}/notes", h.HandleNotes)

	return r
}
