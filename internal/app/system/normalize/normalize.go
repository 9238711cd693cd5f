// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to a single space. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Label lowercases and trims a categorical field value (gender, role,
// faith status, education status) so stored labels compare cleanly.
func Label(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Date trims a date string. Callers validate the layout separately.
func Date(s string) string {
	return strings.TrimSpace(s)
}
