// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/khebert/koinonia/internal/app/system/viewdata"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler renders error pages. No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders a friendly 404 page. Mounted as the router's
// NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Page not found", "/"),
		Message: "The page you were looking for does not exist.",
	}
	templates.Render(w, r, "error_notfound", data)
}

// RenderServerError logs err and shows a friendly 500 page. Handlers
// call this for any failure they cannot recover from.
func RenderServerError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if log != nil {
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	w.WriteHeader(http.StatusInternalServerError)
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Something went wrong", "/"),
		Message: "An unexpected error occurred. Please try again.",
	}
	templates.Render(w, r, "error_server", data)
}
