// Package formutil provides helpers for form re-rendering with
// validation errors.
//
// When a form submission fails validation, the form is re-rendered
// with the user's previously entered values echoed back, an error
// message, and the context data the form needs. Embed Base in a form
// data struct and call SetBase to populate the common fields.
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"

	"github.com/khebert/koinonia/internal/app/system/viewdata"
)

// Base contains common fields for form pages.
type Base struct {
	SiteName    string
	Title       string
	BackURL     string
	CurrentPath string
	Error       template.HTML

	// Flashes keeps the shared layout happy; form pages rarely carry
	// flash messages but the header partial ranges over them.
	Flashes []string
}

// SetBase populates the common Base fields from the request.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.SiteName = viewdata.SiteName
	b.Title = title
	b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	b.CurrentPath = httpnav.CurrentPath(r)
}

// SetError sets the error message on a Base struct.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}
