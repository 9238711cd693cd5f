// internal/app/features/regroup/templates.go
package regroup

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "regroup",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
