package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/evcraddock/gatepass/internal/visit"
)

// EmptyMessage is printed in place of the table when there are no visits.
const EmptyMessage = "No visitors found for the selected date range."

var pdfColumns = []struct {
	title string
	width float64
	cell  func(*visit.Visit) string
}{
	{"Visitor Name", 40, func(v *visit.Visit) string { return v.VisitorName }},
	{"Employee", 35, func(v *visit.Visit) string { return v.Host() }},
	{"Scheduled Time", 35, func(v *visit.Visit) string { return formatTime(v.Scheduled) }},
	{"Check-in Time", 35, func(v *visit.Visit) string { return dash(formatTime(v.CheckInTime)) }},
	{"Status", 25, func(v *visit.Visit) string { return v.DisplayStatus() }},
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// WritePDF writes a one-document report: title, summary counters and the
// visitor table.
func WritePDF(w io.Writer, r *visit.Report, generated time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Visitor Management Report", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Visitor Management Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on "+generated.Local().Format(TimeLayout), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	stats := visit.ComputeStats(r.Visitors)
	counters := []struct {
		label string
		value int
	}{
		{"Total Visitors", stats.Total},
		{"Checked In", stats.CheckedIn},
		{"Pending", stats.PendingCheckIns},
		{"No Show", stats.NoShow},
	}
	width := 170.0 / float64(len(counters))
	pdf.SetFont("Helvetica", "B", 16)
	for _, c := range counters {
		pdf.CellFormat(width, 8, strconv.Itoa(c.value), "", 0, "C", false, 0, "")
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	for _, c := range counters {
		pdf.CellFormat(width, 5, c.label, "", 0, "C", false, 0, "")
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Visitor Details", "", 1, "L", false, 0, "")

	if len(r.Visitors) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, EmptyMessage, "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(243, 244, 246)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, v := range r.Visitors {
			for _, col := range pdfColumns {
				pdf.CellFormat(col.width, 6, tr(col.cell(v)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
