// Package export renders visitor reports as CSV, Excel and PDF files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evcraddock/gatepass/internal/visit"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

// ParseFormat accepts csv, xlsx (or excel) and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv, xlsx or pdf)", s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// TimeLayout formats times in every export.
const TimeLayout = "2006-01-02 15:04"

// Columns are the visitor table headings.
var Columns = []string{
	"Visitor Name",
	"Employee Name",
	"Purpose",
	"Scheduled Time",
	"Check-in Time",
	"Check-out Time",
	"Status",
	"Notes",
}

// Row returns the cells of v in Columns order.
func Row(v *visit.Visit) []string {
	return []string{
		v.VisitorName,
		v.Host(),
		v.Purpose,
		formatTime(v.Scheduled),
		formatTime(v.CheckInTime),
		formatTime(v.CheckOutTime),
		v.DisplayStatus(),
		v.Notes,
	}
}

func formatTime(t visit.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// FileName names an export: visitor_report_<day>.<ext> for a single day or
// an open range, visitor_report_<start>_to_<end>.<ext> otherwise.
func FileName(f Format, start, end, now time.Time) string {
	const day = "2006-01-02"
	if !start.IsZero() && !end.IsZero() && start.Format(day) != end.Format(day) {
		return fmt.Sprintf("visitor_report_%s_to_%s.%s", start.Format(day), end.Format(day), f)
	}
	if !start.IsZero() {
		now = start
	}
	return fmt.Sprintf("visitor_report_%s.%s", now.Format(day), f)
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r *visit.Report, generated time.Time) error {
	switch f {
	case CSV:
		return WriteCSV(w, r.Visitors)
	case XLSX:
		return WriteXLSX(w, r, generated)
	case PDF:
		return WritePDF(w, r, generated)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}
