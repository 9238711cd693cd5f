// internal/app/features/regroup/handler.go
package regroup

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	attendancestore "github.com/khebert/koinonia/internal/app/store/attendance"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/grouping"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
	"github.com/khebert/koinonia/internal/app/system/websession"
	"github.com/khebert/koinonia/internal/divider"
	"github.com/khebert/koinonia/internal/domain/models"
)

// Options carries the divider defaults from app configuration.
type Options struct {
	TargetSize    int
	MinSize       int
	MaxIterations int
	AllowOversize bool
	KeepApart     [][2]string // pairs of folded full names
}

// Handler generates and serves small-group partitions. Results are
// cached per browser session; there is no shared "current groups"
// state.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Sessions   *websession.Manager
	Cache      *grouping.Cache
	Opts       Options
	Members    *memberstore.Store
	Attendance *attendancestore.Store
}

func NewHandler(db *mongo.Database, sessions *websession.Manager, cache *grouping.Cache, opts Options, logger *zap.Logger) *Handler {
	if opts.TargetSize <= 0 {
		opts.TargetSize = 7
	}
	if opts.MinSize <= 0 {
		opts.MinSize = 4
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 2000
	}
	return &Handler{
		DB:         db,
		Log:        logger,
		Sessions:   sessions,
		Cache:      cache,
		Opts:       opts,
		Members:    memberstore.New(db),
		Attendance: attendancestore.New(db),
	}
}

type groupMemberVM struct {
	FullName     string
	Role         string
	Gender       string
	PrepAttended bool
	IsGraduated  bool
}

type groupVM struct {
	Number  int
	Size    int
	Leaders int
	Members []groupMemberVM
}

type pageVM struct {
	viewdata.BaseVM

	Date          string
	TargetSize    int
	GroupCount    int
	AllowOversize bool

	HasResult   bool
	GeneratedAt string
	Groups      []groupVM
}

// rosterForDate joins the active roster with one date's attendance and
// maps it into the divider's member type.
func (h *Handler) rosterForDate(ctx context.Context, date string) ([]divider.Member, error) {
	roster, err := h.Members.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	records, err := h.Attendance.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	out := make([]divider.Member, 0, len(roster))
	for _, m := range roster {
		dm := divider.Member{
			ID:              m.ID.Hex(),
			Surname:         m.Surname,
			GivenName:       m.GivenName,
			Role:            divider.ParseRole(m.Role),
			Gender:          m.Gender,
			FaithStatus:     m.FaithStatus,
			EducationStatus: m.EducationStatus,
			IsGraduated:     m.IsGraduated(),
		}
		if rec, ok := records[m.ID]; ok {
			dm.IsPresent = rec.Present
			dm.PrepAttended = rec.PrepAttended
		}
		out = append(out, dm)
	}
	return out, nil
}

func foldName(s string) string {
	return text.Fold(strings.Join(strings.Fields(s), " "))
}

// keepApartIDs resolves the configured keep-apart name pairs against
// the roster. Pairs naming absent or unknown members drop out.
func keepApartIDs(pairs [][2]string, roster []divider.Member) [][2]string {
	if len(pairs) == 0 {
		return nil
	}
	byName := make(map[string]string, len(roster))
	for _, m := range roster {
		byName[foldName(m.Surname+" "+m.GivenName)] = m.ID
	}
	var out [][2]string
	for _, p := range pairs {
		a, okA := byName[foldName(p[0])]
		b, okB := byName[foldName(p[1])]
		if okA && okB {
			out = append(out, [2]string{a, b})
		}
	}
	return out
}

// ServeGroups handles GET /groups: the generation form plus this
// session's cached result, if any.
func (h *Handler) ServeGroups(w http.ResponseWriter, r *http.Request) {
	date := query.Get(r, "date")
	if date == "" {
		date = models.Today()
	}

	data := pageVM{
		BaseVM:        viewdata.NewBaseVM(r, "Groups", "/"),
		Date:          date,
		TargetSize:    h.Opts.TargetSize,
		AllowOversize: h.Opts.AllowOversize,
	}
	if h.Sessions != nil {
		data.Flashes = h.Sessions.PopFlashes(w, r)
	}

	if res, ok := h.Cache.Get(websession.ID(r)); ok {
		data.HasResult = true
		data.Date = res.Date
		data.GeneratedAt = res.GeneratedAt.Format("15:04:05")
		data.Groups = toGroupVMs(res.Partition)
	}

	templates.Render(w, r, "groups", data)
}

func toGroupVMs(p divider.Partition) []groupVM {
	out := make([]groupVM, 0, len(p))
	for i, g := range p {
		vm := groupVM{
			Number:  i + 1,
			Size:    g.Size(),
			Leaders: g.LeaderCount(),
		}
		for _, m := range g.Members {
			vm.Members = append(vm.Members, groupMemberVM{
				FullName:     m.Surname + " " + m.GivenName,
				Role:         string(m.Role),
				Gender:       m.Gender,
				PrepAttended: m.PrepAttended,
				IsGraduated:  m.IsGraduated,
			})
		}
		out = append(out, vm)
	}
	return out
}

// HandleGenerate handles POST /groups/generate.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	date := r.FormValue("date")
	if date == "" {
		date = models.Today()
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		http.Error(w, "bad date", http.StatusBadRequest)
		return
	}

	targetSize := h.Opts.TargetSize
	if v, err := strconv.Atoi(r.FormValue("target_size")); err == nil && v > 0 {
		targetSize = v
	}
	groupCount := 0
	if v, err := strconv.Atoi(r.FormValue("group_count")); err == nil && v > 0 {
		groupCount = v
	}
	allowOversize := h.Opts.AllowOversize
	if r.FormValue("allow_oversize") != "" {
		allowOversize = r.FormValue("allow_oversize") == "on"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roster, err := h.rosterForDate(ctx, date)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	cfg := divider.Config{
		GroupCountHint: groupCount,
		TargetSize:     targetSize,
		MinSize:        h.Opts.MinSize,
		RequireLeader:  true,
		AllowOversize:  allowOversize,
		KeepApart:      keepApartIDs(h.Opts.KeepApart, roster),
	}

	partition, err := cfg.Build(roster)
	if err != nil {
		h.flashBuildError(w, r, err)
		http.Redirect(w, r, "/groups?date="+date, http.StatusSeeOther)
		return
	}

	partition = divider.BalanceGenderKeepApart(partition, h.Opts.MaxIterations, cfg.KeepApart)

	h.Cache.Put(websession.ID(r), grouping.Result{
		Partition:   partition,
		Date:        date,
		GeneratedAt: time.Now(),
	})

	http.Redirect(w, r, "/groups", http.StatusSeeOther)
}

func (h *Handler) flashBuildError(w http.ResponseWriter, r *http.Request, err error) {
	var msg string
	switch {
	case errors.Is(err, divider.ErrInsufficientMembers):
		msg = "Not enough present members to form a group."
	case errors.Is(err, divider.ErrNoLeaders):
		msg = "No facilitator or counselor is present; groups need a leader."
	case errors.Is(err, divider.ErrConstraintUnsatisfiable):
		msg = "The present members cannot fit the configured group sizes. Allow oversize groups or adjust the target size."
	default:
		msg = "Group generation failed: " + err.Error()
	}
	h.Log.Info("group generation rejected", zap.Error(err))
	if h.Sessions != nil {
		h.Sessions.Flash(w, r, msg)
	}
}

// HandleClear handles POST /groups/clear.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.Cache.Clear(websession.ID(r))
	http.Redirect(w, r, "/groups", http.StatusSeeOther)
}
