// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"

	uierrors "github.com/khebert/koinonia/internal/app/features/errors"
	memberstore "github.com/khebert/koinonia/internal/app/store/members"
	"github.com/khebert/koinonia/internal/app/system/paging"
	"github.com/khebert/koinonia/internal/app/system/timeouts"
	"github.com/khebert/koinonia/internal/app/system/viewdata"
	"github.com/khebert/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /members: the paged, searchable roster.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	search := query.Get(r, "q")
	activeOnly := query.Get(r, "show") != "all"
	before := query.Get(r, "before")
	after := query.Get(r, "after")
	start := paging.ParseStart(r)

	filter := memberstore.ListFilter{SearchQuery: search, ActiveOnly: activeOnly}
	cfg := paging.ConfigureKeyset(before, after)

	rows, err := h.Members.List(ctx, filter, cfg)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}
	total, err := h.Members.Count(ctx, filter)
	if err != nil {
		uierrors.RenderServerError(w, r, h.Log, err)
		return
	}

	page := paging.TrimPage(&rows, before, after)
	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	prevCur, nextCur := paging.BuildCursors(rows,
		func(m models.Member) string { return m.FullNameCI },
		func(m models.Member) primitive.ObjectID { return m.ID },
	)
	rng := paging.ComputeRange(start, len(rows))

	memberRows := make([]memberRow, 0, len(rows))
	for _, m := range rows {
		memberRows = append(memberRows, memberRow{
			ID:              m.ID,
			FullName:        m.FullName(),
			Role:            m.Role,
			Gender:          m.Gender,
			FaithStatus:     m.FaithStatus,
			EducationStatus: m.EducationStatus,
			Active:          m.Active,
		})
	}

	data := listData{
		BaseVM:      viewdata.NewBaseVM(r, "Members", "/"),
		SearchQuery: search,
		ActiveOnly:  activeOnly,
		Shown:       len(rows),
		Total:       total,
		HasPrev:     page.HasPrev,
		HasNext:     page.HasNext,
		PrevCursor:  prevCur,
		NextCursor:  nextCur,
		RangeStart:  rng.Start,
		RangeEnd:    rng.End,
		PrevStart:   rng.PrevStart,
		NextStart:   rng.NextStart,
		MemberRows:  memberRows,
	}
	if h.Sessions != nil {
		data.Flashes = h.Sessions.PopFlashes(w, r)
	}

	templates.Render(w, r, "members_list", data)
}
