// internal/app/features/shared/views/views.go

// Package shared registers the site-wide template set every feature
// page builds on: the "page_header" partial (head, nav links, flash
// banner) and the closing "page_footer". Feature templates invoke
// both, so this set must be registered before any page renders;
// bootstrap blank-imports the package for that.
package shared

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var layoutFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "shared",
		FS:       layoutFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
