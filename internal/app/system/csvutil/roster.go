// internal/app/system/csvutil/roster.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// MaxRosterRows caps how many members one upload may carry.
const MaxRosterRows = 2000

// RosterRow is the normalized row produced by PreScanRosterCSV.
// Role and EducationStatus are canonical lower-case.
type RosterRow struct {
	Surname         string
	GivenName       string
	Gender          string
	FaithStatus     string
	Role            string
	EducationStatus string
	Notes           string
}

var allowedRoles = map[string]bool{
	"facilitator": true, "counselor": true, "regular": true, "none": true,
}

var allowedEducation = map[string]bool{
	"undergraduate": true, "graduate": true, "graduated": true,
}

// PreScanRosterCSV reads all rows from r, skips a header if present,
// validates each row, and either returns normalized rows OR a formatted
// HTML error message describing the first few bad lines. It never
// writes to a DB; it's safe to call before any mutations.
//
// Expected columns: surname, given name, gender, faith status, role,
// education status, notes (optional).
func PreScanRosterCSV(r io.Reader) (rows []RosterRow, htmlErr template.HTML, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, ferr := reader.Read()
	if ferr == io.EOF {
		first = nil
	} else if ferr != nil {
		return nil, template.HTML(template.HTMLEscapeString(ferr.Error())), nil
	}
	var raw [][]string
	if len(first) >= 2 &&
		strings.EqualFold(strings.TrimSpace(first[0]), "surname") &&
		(strings.EqualFold(strings.TrimSpace(first[1]), "given name") ||
			strings.EqualFold(strings.TrimSpace(first[1]), "given_name")) {
		// header detected → skip
	} else if first != nil {
		raw = append(raw, first)
	}
	for {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		if e != nil || len(rec) == 0 {
			continue
		}
		raw = append(raw, rec)
		if len(raw) > MaxRosterRows {
			return nil, template.HTML(fmt.Sprintf(
				"Upload rejected: more than %d rows.", MaxRosterRows)), nil
		}
	}

	type rowErr struct {
		Line   int
		Name   string
		Reason string
	}
	var errs []rowErr

	field := func(rec []string, i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	for i, rec := range raw {
		row := RosterRow{
			Surname:         field(rec, 0),
			GivenName:       field(rec, 1),
			Gender:          field(rec, 2),
			FaithStatus:     field(rec, 3),
			Role:            strings.ToLower(field(rec, 4)),
			EducationStatus: strings.ToLower(field(rec, 5)),
			Notes:           field(rec, 6),
		}
		if row.Surname == "" && row.GivenName == "" {
			continue // blank line
		}

		line := i + 1
		name := strings.TrimSpace(row.Surname + " " + row.GivenName)
		if row.Surname == "" || row.GivenName == "" {
			errs = append(errs, rowErr{line, name, "missing surname or given name"})
		}
		if row.Gender == "" {
			errs = append(errs, rowErr{line, name, "missing gender"})
		}
		if row.Role == "" || !allowedRoles[row.Role] {
			errs = append(errs, rowErr{line, name, "invalid or missing role"})
		} else if row.Role == "none" {
			row.Role = "regular"
		}
		if row.EducationStatus != "" && !allowedEducation[row.EducationStatus] {
			errs = append(errs, rowErr{line, name, "invalid education status"})
		}
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		var b strings.Builder
		b.WriteString("Upload rejected: one or more rows are invalid.<br>")
		b.WriteString("Each row needs: surname, given name, gender, faith status, role, education status.<br>")
		b.WriteString("Allowed roles: facilitator, counselor, regular. ")
		b.WriteString("Allowed education statuses: undergraduate, graduate, graduated.<br>")

		max := 5
		if len(errs) < max {
			max = len(errs)
		}
		b.WriteString("Examples:<br>")
		for i := 0; i < max; i++ {
			e := errs[i]
			name := e.Name
			if name == "" {
				name = "(unnamed row)"
			}
			b.WriteString(fmt.Sprintf("line %d, %s: %s<br>",
				e.Line, template.HTMLEscapeString(name), e.Reason))
		}
		return nil, template.HTML(b.String()), nil
	}

	return rows, "", nil
}
