// Package csvimport parses bulk lead uploads. It accepts the loose CSVs the
// admin front end produces: headers in any casing/spacing, comma-separated
// multi-value cells, and missing optional columns.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"salescrm.service/internal/core/model"
	"salescrm.service/internal/metrics"
)

// Row is one parsed lead row, already trimmed and defaulted: status defaults
// to open, type to warm, and a blank or unparseable received date to now.
type Row struct {
	Name                 string
	Email                string
	Phone                string
	ReceivedDate         time.Time
	Status               model.LeadStatus
	Type                 model.LeadType
	Languages            []string
	Locations            []string
	AssignedEmployeeName string
}

// Lead converts the row into a lead entity ready for insertion.
func (r Row) Lead() model.Lead {
	return model.Lead{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		ReceivedDate:  r.ReceivedDate,
		Status:        r.Status,
		Type:          r.Type,
		Languages:     r.Languages,
		Locations:     r.Locations,
		CrmSyncStatus: model.SyncPending,
		EmailStatus:   model.SyncPending,
	}
}

// dateLayouts are tried in order for the receiveddate column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Parse reads CSV data from the reader and returns the lead rows. The first
// record is the header; header names are matched after lowercasing and
// stripping whitespace, so "Received Date" and "receiveddate" are the same
// column. Rows without a name, or with neither email nor phone, or without
// at least one language and location, are skipped and counted, not fatal.
func Parse(r io.Reader, now func() time.Time) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}

	var rows []Row
	lineNum := 1
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV at line %d: %w", lineNum, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := Row{
			Name:                 field("name"),
			Email:                field("email"),
			Phone:                field("phone"),
			ReceivedDate:         parseDate(field("receiveddate"), now),
			Status:               parseStatus(field("status")),
			Type:                 parseType(field("type")),
			Languages:            splitList(field("language")),
			Locations:            splitList(field("location")),
			AssignedEmployeeName: field("assignedemployee"),
		}

		if row.Name == "" || (row.Email == "" && row.Phone == "") ||
			len(row.Languages) == 0 || len(row.Locations) == 0 {
			metrics.ImportRowErrors.Inc()
			continue
		}

		metrics.ImportRowsTotal.Inc()
		rows = append(rows, row)
	}

	return rows, nil
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(s string, now func() time.Time) time.Time {
	if s == "" {
		return now()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now()
}

func parseStatus(s string) model.LeadStatus {
	switch model.LeadStatus(strings.ToLower(s)) {
	case model.LeadOpen, model.LeadOngoing, model.LeadPending, model.LeadClosed:
		return model.LeadStatus(strings.ToLower(s))
	}
	return model.LeadOpen
}

func parseType(s string) model.LeadType {
	switch model.LeadType(strings.ToLower(s)) {
	case model.LeadHot, model.LeadWarm, model.LeadCold:
		return model.LeadType(strings.ToLower(s))
	}
	return model.LeadWarm
}
