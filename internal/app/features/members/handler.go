// internal/app/features/members/handler.go
package members

import (
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	attendancestore "github.com/khebert/koinonia/internal/app/store/attendance"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/websession"
)

// Handler is the feature-level handler for the roster.
// It holds the DB handle, stores, and logger provided at startup.
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

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	if h.Sessions != nil {
		h.Sessions.Flash(w, r, msg)
	}
}
