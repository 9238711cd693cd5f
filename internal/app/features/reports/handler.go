// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	attendancestore "github.com/khebert/koinonia/internal/app/store/attendance"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
	"github.com/khebert/koinonia/internal/domain/models"
)

// summaryLimit caps the attendance summary to recent meetings.
const summaryLimit = 26

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

type summaryRow struct {
	Date         string
	PresentCount int64
	PrepCount    int64
}

type pageData struct {
	viewdata.BaseVM

	ActiveTotal  int64
	Facilitators int64
	Counselors   int64
	Regulars     int64
	Meetings     []summaryRow
}

// ServeReports handles GET /reports.
func (h *Handler) ServeReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := h.Members.CountByRole(ctx)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	summaries, err := h.Attendance.Summaries(ctx, summaryLimit)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	data := pageData{
		BaseVM:       viewdata.NewBaseVM(r, "Reports", "/"),
		Facilitators: counts[models.RoleFacilitator],
		Counselors:   counts[models.RoleCounselor],
		Regulars:     counts[models.RoleRegular],
	}
	for _, c := range counts {
		data.ActiveTotal += c
	}
	for _, s := range summaries {
		data.Meetings = append(data.Meetings, summaryRow{
			Date:         s.Date,
			PresentCount: s.PresentCount,
			PrepCount:    s.PrepCount,
		})
	}

	templates.Render(w, r, "reports", data)
}

// HandleMembersCSV handles GET /reports/members.csv: the full roster,
// active and inactive.
func (h *Handler) HandleMembersCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	members, err := h.Members.ListAll(ctx)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "members.csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"surname", "given_name", "gender", "faith_status", "role", "education_status", "active"})
	for _, m := range members {
		_ = cw.Write([]string{
			m.Surname,
			m.GivenName,
			m.Gender,
			m.FaithStatus,
			m.Role,
			m.EducationStatus,
			strconv.FormatBool(m.Active),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("members csv flush failed", zap.Error(err))
	}
}

// HandleAttendanceCSV handles GET /reports/attendance.csv: one row per
// meeting date with present and prep counts, newest first.
func (h *Handler) HandleAttendanceCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	summaries, err := h.Attendance.Summaries(ctx, 0)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "attendance.csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "present", "prep"})
	for _, s := range summaries {
		_ = cw.Write([]string{
			s.Date,
			strconv.FormatInt(s.PresentCount, 10),
			strconv.FormatInt(s.PrepCount, 10),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("attendance csv flush failed", zap.Error(err))
	}
}
