// internal/app/features/members/upload.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	"github.com/khebert/koinonia/internal/app/system/csvutil"
	"github.com/khebert/koinonia/internal/app/system/formutil"
	"github.com/khebert/koinonia/internal/app/system/htmlsanitize"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/domain/models"
)

// ServeUploadCSV handles GET /members/upload_csv.
func (h *Handler) ServeUploadCSV(w http.ResponseWriter, r *http.Request) {
	var data uploadData
	formutil.SetBase(&data.Base, r, "Upload roster CSV", "/members")
	templates.Render(w, r, "members_upload", data)
}

// HandleUploadCSV handles POST /members/upload_csv. The whole file is
// validated before any member is written, so a bad row never leaves a
// half-imported roster.
func (h *Handler) HandleUploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	file, _, err := r.FormFile("csv")
	if err != nil {
		var data uploadData
		formutil.SetBase(&data.Base, r, "Upload roster CSV", "/members")
		data.SetError("CSV file is required.")
		templates.Render(w, r, "members_upload", data)
		return
	}
	defer file.Close()

	rows, htmlErr, scanErr := csvutil.PreScanRosterCSV(file)
	if scanErr != nil {
		uierrors.RenderServerError(w, r, h.Log, scanErr)
		return
	}
	if htmlErr != "" {
		var data uploadData
		formutil.SetBase(&data.Base, r, "Upload roster CSV", "/members")
		data.Error = htmlErr
		templates.Render(w, r, "members_upload", data)
		return
	}

	toInsert := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		toInsert = append(toInsert, models.Member{
			Surname:         row.Surname,
			GivenName:       row.GivenName,
			Gender:          row.Gender,
			FaithStatus:     row.FaithStatus,
			Role:            row.Role,
			EducationStatus: row.EducationStatus,
			Notes:           htmlsanitize.Sanitize(row.Notes),
		})
	}

	created, err := h.Members.InsertMany(ctx, toInsert)
	if err != nil {
		h.Log.Warn("roster import failed part-way",
			zap.Int("created", created),
			zap.Error(err))
	}

	data := uploadData{Created: created, Done: true}
	formutil.SetBase(&data.Base, r, "Upload roster CSV", "/members")
	templates.Render(w, r, "members_upload", data)
}
