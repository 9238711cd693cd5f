// internal/app/features/home/handler.go
package home

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	attendancestore "github.com/khebert/koinonia/internal/app/store/attendance"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
	"github.com/khebert/koinonia/internal/app/system/websession"
	"github.com/khebert/koinonia/internal/domain/models"
)

// Handler holds dependencies needed to serve the dashboard.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Sessions   *websession.Manager
	Members    *memberstore.Store
	Attendance *attendancestore.Store
}

func NewHandler(db *mongo.Database, sessions *websession.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		Sessions:   sessions,
		Members:    memberstore.New(db),
		Attendance: attendancestore.New(db),
	}
}

// recentMeetings caps how many attendance summaries show on the
// dashboard.
const recentMeetings = 8

type meetingRow struct {
	Date         string
	PresentCount int64
	PrepCount    int64
}

type homeData struct {
	viewdata.BaseVM

	ActiveTotal  int64
	Facilitators int64
	Counselors   int64
	Regulars     int64

	Today    string
	Meetings []meetingRow
}

// ServeRoot handles GET /.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	counts, err := h.Members.CountByRole(ctx)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	summaries, err := h.Attendance.Summaries(ctx, recentMeetings)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	meetings := make([]meetingRow, 0, len(summaries))
	for _, s := range summaries {
		meetings = append(meetings, meetingRow{
			Date:         s.Date,
			PresentCount: s.PresentCount,
			PrepCount:    s.PrepCount,
		})
	}

	data := homeData{
		BaseVM:       viewdata.NewBaseVM(r, "Dashboard", "/"),
		ActiveTotal:  counts[models.RoleFacilitator] + counts[models.RoleCounselor] + counts[models.RoleRegular],
		Facilitators: counts[models.RoleFacilitator],
		Counselors:   counts[models.RoleCounselor],
		Regulars:     counts[models.RoleRegular],
		Today:        models.Today(),
		Meetings:     meetings,
	}
	if h.Sessions != nil {
		data.Flashes = h.Sessions.PopFlashes(w, r)
	}

	templates.Render(w, r, "home", data)
}
