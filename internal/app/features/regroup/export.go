// internal/app/features/regroup/export.go
package regroup

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/khebert/koinonia/internal/app/system/websession"
)

// HandleExportCSV handles GET /groups/export.csv. Exports the session's
// cached partition; without one it redirects back to the groups page.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Cache.Get(websession.ID(r))
	if !ok {
		http.Redirect(w, r, "/groups", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "groups_"+res.Date+".csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"group", "surname", "given_name", "role", "gender", "prep_attended"})
	for i, g := range res.Partition {
		num := strconv.Itoa(i + 1)
		for _, m := range g.Members {
			_ = cw.Write([]string{
				num,
				m.Surname,
				m.GivenName,
				string(m.Role),
				m.Gender,
				strconv.FormatBool(m.PrepAttended),
			})
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("csv export flush failed", zap.Error(err))
	}
}

// HandleExportMarkdown handles GET /groups/export.md.
func (h *Handler) HandleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Cache.Get(websession.ID(r))
	if !ok {
		http.Redirect(w, r, "/groups", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "groups_"+res.Date+".md"))

	var b strings.Builder
	fmt.Fprintf(&b, "# Groups for %s\n", res.Date)
	for i, g := range res.Partition {
		fmt.Fprintf(&b, "\n## Group %d\n\n", i+1)
		for _, m := range g.Members {
			line := "- " + m.Surname + " " + m.GivenName
			var tags []string
			if m.Role.IsLeader() {
				tags = append(tags, string(m.Role))
			}
			if m.PrepAttended {
				tags = append(tags, "prep")
			}
			if m.IsGraduated {
				tags = append(tags, "graduate")
			}
			if len(tags) > 0 {
				line += " (" + strings.Join(tags, ", ") + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	if _, err := w.Write([]byte(b.String())); err != nil {
		h.Log.Warn("markdown export write failed", zap.Error(err))
	}
}
