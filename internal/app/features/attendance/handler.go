// internal/app/features/attendance/handler.go
package attendance

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	attendancestore "github.com/khebert/koinonia/internal/app/store/attendance"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/htmlsanitize"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
	"github.com/khebert/koinonia/internal/domain/models"
)

// Handler serves the per-date attendance sheet.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Members    *memberstore.Store
	Attendance *attendancestore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		Members:    memberstore.New(db),
		Attendance: attendancestore.New(db),
	}
}

type sheetRow struct {
	MemberID     string
	FullName     string
	Role         string
	Present      bool
	PrepAttended bool
	Notes        string
}

type sheetData struct {
	viewdata.BaseVM

	Date         string
	PresentCount int
	PrepCount    int
	Rows         []sheetRow
}

// sheetDate resolves the requested meeting date, defaulting to today.
func sheetDate(r *http.Request) (string, bool) {
	date := query.Get(r, "date")
	if date == "" {
		date = r.FormValue("date")
	}
	if date == "" {
		return models.Today(), true
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

// ServeSheet handles GET /attendance?date=YYYY-MM-DD.
// Every active member appears; members without a record for the date
// show as absent.
func (h *Handler) ServeSheet(w http.ResponseWriter, r *http.Request) {
	date, ok := sheetDate(r)
	if !ok {
		http.Error(w, "bad date", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roster, err := h.Members.ListActive(ctx)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	records, err := h.Attendance.ForDate(ctx, date)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	data := sheetData{
		BaseVM: viewdata.NewBaseVM(r, "Attendance "+date, "/"),
		Date:   date,
	}
	for _, m := range roster {
		row := sheetRow{
			MemberID: m.ID.Hex(),
			FullName: m.FullName(),
			Role:     m.Role,
		}
		if rec, ok := records[m.ID]; ok {
			row.Present = rec.Present
			row.PrepAttended = rec.PrepAttended
			row.Notes = rec.Notes
			if rec.Present {
				data.PresentCount++
			}
			if rec.PrepAttended {
				data.PrepCount++
			}
		}
		data.Rows = append(data.Rows, row)
	}

	templates.Render(w, r, "attendance_sheet", data)
}

func (h *Handler) toggleTarget(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, string, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return primitive.NilObjectID, "", false
	}
	date, ok := sheetDate(r)
	if !ok {
		http.Error(w, "bad date", http.StatusBadRequest)
		return primitive.NilObjectID, "", false
	}
	return id, date, true
}

func sheetURL(date string) string {
	return "/attendance?date=" + url.QueryEscape(date)
}

// HandleTogglePresent handles POST /attendance/{id}/present.
// The "present" form value carries the new state.
func (h *Handler) HandleTogglePresent(w http.ResponseWriter, r *http.Request) {
	id, date, ok := h.toggleTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	present := r.FormValue("present") == "on" || r.FormValue("present") == "true"
	if err := h.Attendance.SetPresent(ctx, id, date, present); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	http.Redirect(w, r, sheetURL(date), http.StatusSeeOther)
}

// HandleTogglePrep handles POST /attendance/{id}/prep.
func (h *Handler) HandleTogglePrep(w http.ResponseWriter, r *http.Request) {
	id, date, ok := h.toggleTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	prep := r.FormValue("prep") == "on" || r.FormValue("prep") == "true"
	if err := h.Attendance.SetPrep(ctx, id, date, prep); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	http.Redirect(w, r, sheetURL(date), http.StatusSeeOther)
}

// HandleNotes handles POST /attendance/{id}/notes.
func (h *Handler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	id, date, ok := h.toggleTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	notes := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("notes")))
	if err := h.Attendance.SetNotes(ctx, id, date, notes); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	http.Redirect(w, r, sheetURL(date), http.StatusSeeOther)
}
