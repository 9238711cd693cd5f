// internal/app/features/regroup/handler_test.go
package regroup_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/khebert/koinonia/internal/app/features/regroup"
	"github.com/khebert/koinonia/internal/app/system/grouping"
	"github.com/khebert/koinonia/internal/app/system/websession"
	"github.com/khebert/koinonia/internal/testutil"
)

const meetingDate = "2026-03-01"

func newHandler(t *testing.T) (*regroup.Handler, *grouping.Cache, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cache := grouping.NewCache()
	h := regroup.NewHandler(db, nil, cache, regroup.Options{
		TargetSize:    4,
		MinSize:       2,
		MaxIterations: 500,
	}, zap.NewNop())
	return h, cache, testutil.NewFixtures(t, db)
}

// seedMeeting creates n members, the first two being a facilitator and
// a counselor, and marks them all present on meetingDate.
func seedMeeting(t *testing.T, fx *testutil.Fixtures, n int) []primitive.ObjectID {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ids := make([]primitive.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		role := "regular"
		switch i {
		case 0:
			role = "facilitator"
		case 1:
			role = "counselor"
		}
		m := fx.CreateMember(ctx, fmt.Sprintf("Surname%c", 'A'+i), "Given", role)
		fx.CreateAttendance(ctx, m.ID, meetingDate, true, i%3 == 0)
		ids = append(ids, m.ID)
	}
	return ids
}

func postGenerate(h *regroup.Handler, sessionID, form string) *httptest.ResponseRecorder {
	req := testutil.NewFormRequest("/groups/generate", form)
	req = websession.WithTestID(req, sessionID)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	return rec
}

func TestGenerateCachesPartitionForSession(t *testing.T) {
	h, cache, fx := newHandler(t)
	ids := seedMeeting(t, fx, 8)

	rec := postGenerate(h, "sess-1", "date="+meetingDate)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/groups" {
		t.Fatalf("redirect = %q, want /groups", loc)
	}

	res, ok := cache.Get("sess-1")
	if !ok {
		t.Fatal("expected a cached result for the session")
	}
	if res.Date != meetingDate {
		t.Errorf("cached date = %q, want %q", res.Date, meetingDate)
	}
	if got := res.Partition.TotalMembers(); got != len(ids) {
		t.Errorf("partition covers %d members, want %d", got, len(ids))
	}
	for _, id := range ids {
		found := false
		for _, g := range res.Partition {
			if g.Contains(id.Hex()) {
				found = true
			}
		}
		if !found {
			t.Errorf("member %s missing from partition", id.Hex())
		}
	}
}

func TestGenerateIgnoresAbsentMembers(t *testing.T) {
	h, cache, fx := newHandler(t)
	seedMeeting(t, fx, 6)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	absent := fx.CreateMember(ctx, "Absent", "One", "regular")
	fx.CreateAttendance(ctx, absent.ID, meetingDate, false, false)

	postGenerate(h, "sess-2", "date="+meetingDate)

	res, ok := cache.Get("sess-2")
	if !ok {
		t.Fatal("expected a cached result")
	}
	if res.Partition.TotalMembers() != 6 {
		t.Errorf("partition covers %d members, want 6", res.Partition.TotalMembers())
	}
	for _, g := range res.Partition {
		if g.Contains(absent.ID.Hex()) {
			t.Error("absent member was placed in a group")
		}
	}
}

func TestGenerateEmptyMeetingRedirectsWithoutResult(t *testing.T) {
	h, cache, _ := newHandler(t)

	rec := postGenerate(h, "sess-3", "date="+meetingDate)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/groups?date=") {
		t.Errorf("redirect = %q, want back to the form", rec.Header().Get("Location"))
	}
	if _, ok := cache.Get("sess-3"); ok {
		t.Error("no partition should be cached after a failed build")
	}
}

func TestGenerateRejectsBadDate(t *testing.T) {
	h, _, _ := newHandler(t)

	rec := postGenerate(h, "sess-4", "date=03%2F01%2F2026")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestClearDropsCachedResult(t *testing.T) {
	h, cache, fx := newHandler(t)
	seedMeeting(t, fx, 6)
	postGenerate(h, "sess-5", "date="+meetingDate)

	req := testutil.NewFormRequest("/groups/clear", "")
	req = websession.WithTestID(req, "sess-5")
	rec := httptest.NewRecorder()
	h.HandleClear(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if _, ok := cache.Get("sess-5"); ok {
		t.Error("cache entry should be gone after clear")
	}
}

func TestExportCSVListsEveryMember(t *testing.T) {
	h, _, fx := newHandler(t)
	ids := seedMeeting(t, fx, 6)
	postGenerate(h, "sess-6", "date="+meetingDate)

	req := testutil.NewRequest(http.MethodGet, "/groups/export.csv")
	req = websession.WithTestID(req, "sess-6")
	rec := httptest.NewRecorder()
	h.HandleExportCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "group,surname,given_name,role,gender,prep_attended") {
		t.Errorf("missing header row, got %q", strings.SplitN(body, "\n", 2)[0])
	}
	if got := strings.Count(body, "\n"); got != len(ids)+1 {
		t.Errorf("csv has %d lines, want %d", got, len(ids)+1)
	}
}

func TestExportMarkdownGroupHeadings(t *testing.T) {
	h, cache, fx := newHandler(t)
	seedMeeting(t, fx, 6)
	postGenerate(h, "sess-7", "date="+meetingDate)

	res, _ := cache.Get("sess-7")

	req := testutil.NewRequest(http.MethodGet, "/groups/export.md")
	req = websession.WithTestID(req, "sess-7")
	rec := httptest.NewRecorder()
	h.HandleExportMarkdown(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "# Groups for "+meetingDate) {
		t.Error("missing document heading")
	}
	for i := range res.Partition {
		heading := fmt.Sprintf("## Group %d", i+1)
		if !strings.Contains(body, heading) {
			t.Errorf("missing %q", heading)
		}
	}
	if !strings.Contains(body, "(facilitator") {
		t.Error("facilitator tag missing from markdown")
	}
}

func TestExportWithoutResultRedirects(t *testing.T) {
	h, _, _ := newHandler(t)

	req := testutil.NewRequest(http.MethodGet, "/groups/export.csv")
	req = websession.WithTestID(req, "sess-none")
	rec := httptest.NewRecorder()
	h.HandleExportCSV(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestServeGroupsRenders(t *testing.T) {
	h, _, fx := newHandler(t)
	seedMeeting(t, fx, 6)
	postGenerate(h, "sess-8", "date="+meetingDate)

	req := testutil.NewRequest(http.MethodGet, "/groups")
	req = websession.WithTestID(req, "sess-8")
	rec := httptest.NewRecorder()

	// The shared layout set is not loaded in unit tests, so rendering
	// may panic inside the template engine.
	func() {
		defer func() { _ = recover() }()
		h.ServeGroups(rec, req)
	}()
}
