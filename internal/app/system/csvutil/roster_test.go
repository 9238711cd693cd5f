package csvutil_test

import (
	"strings"
	"testing"

	"github.com/khebert/koinonia/internal/app/system/csvutil"
)

func TestPreScanRosterCSV_SkipsHeader(t *testing.T) {
	in := "Surname,Given Name,Gender,Faith Status,Role,Education Status\n" +
		"Zhang,San,M,baptized,facilitator,graduated\n" +
		"Li,Si,F,seeker,regular,undergraduate\n"

	rows, htmlErr, err := csvutil.PreScanRosterCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if htmlErr != "" {
		t.Fatalf("unexpected html error: %s", htmlErr)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[0].Surname != "Zhang" || rows[0].Role != "facilitator" {
		t.Errorf("row 0 mismatch: %+v", rows[0])
	}
}

func TestPreScanRosterCSV_NoHeader(t *testing.T) {
	in := "Wang,Wu,M,seeker,regular,graduate\n"
	rows, htmlErr, _ := csvutil.PreScanRosterCSV(strings.NewReader(in))
	if htmlErr != "" {
		t.Fatalf("unexpected html error: %s", htmlErr)
	}
	if len(rows) != 1 || rows[0].Surname != "Wang" {
		t.Fatalf("rows: %+v", rows)
	}
}

func TestPreScanRosterCSV_NormalizesNoneRole(t *testing.T) {
	in := "Zhao,Liu,F,seeker,None,undergraduate\n"
	rows, htmlErr, _ := csvutil.PreScanRosterCSV(strings.NewReader(in))
	if htmlErr != "" {
		t.Fatalf("unexpected html error: %s", htmlErr)
	}
	if rows[0].Role != "regular" {
		t.Errorf("legacy 'none' role should normalize to regular, got %q", rows[0].Role)
	}
}

func TestPreScanRosterCSV_RejectsBadRole(t *testing.T) {
	in := "Qian,Qi,F,seeker,chairperson,undergraduate\n"
	rows, htmlErr, _ := csvutil.PreScanRosterCSV(strings.NewReader(in))
	if rows != nil {
		t.Error("invalid rows must not be returned")
	}
	if !strings.Contains(string(htmlErr), "invalid or missing role") {
		t.Errorf("html error should name the bad role, got: %s", htmlErr)
	}
}

func TestPreScanRosterCSV_SkipsBlankLines(t *testing.T) {
	in := "Sun,Ba,M,baptized,counselor,graduate\n,,,,,\n"
	rows, htmlErr, _ := csvutil.PreScanRosterCSV(strings.NewReader(in))
	if htmlErr != "" {
		t.Fatalf("unexpected html error: %s", htmlErr)
	}
	if len(rows) != 1 {
		t.Errorf("blank lines should be skipped, got %d rows", len(rows))
	}
}

func TestPreScanRosterCSV_Empty(t *testing.T) {
	rows, htmlErr, err := csvutil.PreScanRosterCSV(strings.NewReader(""))
	if err != nil || htmlErr != "" {
		t.Fatalf("empty input should not error, got %v / %s", err, htmlErr)
	}
	if len(rows) != 0 {
		t.Errorf("rows: got %d, want 0", len(rows))
	}
}
