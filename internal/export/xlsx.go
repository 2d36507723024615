package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/gatepass/internal/visit"
)

const (
	summarySheet  = "Summary"
	visitorsSheet = "Visitors"
)

type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
	bold  int
}

func (s *sheetWriter) write(bold bool, cells ...interface{}) error {
	for i, val := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(s.sheet, cell, val); err != nil {
			return fmt.Errorf("setting %s!%s: %w", s.sheet, cell, err)
		}
	}
	if bold && len(cells) > 0 {
		start, _ := excelize.CoordinatesToCellName(1, s.row)
		end, _ := excelize.CoordinatesToCellName(len(cells), s.row)
		if err := s.file.SetCellStyle(s.sheet, start, end, s.bold); err != nil {
			return fmt.Errorf("styling %s: %w", s.sheet, err)
		}
	}
	s.row++
	return nil
}

func (s *sheetWriter) skip() { s.row++ }

// WriteXLSX writes a workbook with a Summary sheet and a Visitors sheet.
func WriteXLSX(w io.Writer, r *visit.Report, generated time.Time) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(visitorsSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	sum := &sheetWriter{file: f, sheet: summarySheet, row: 1, bold: bold}
	if err := writeSummary(sum, r, generated); err != nil {
		return err
	}

	vis := &sheetWriter{file: f, sheet: visitorsSheet, row: 1, bold: bold}
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := vis.write(true, header...); err != nil {
		return err
	}
	for _, v := range r.Visitors {
		row := Row(v)
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := vis.write(false, cells...); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(visitorsSheet, "A", "H", 20); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(s *sheetWriter, r *visit.Report, generated time.Time) error {
	rows := [][]interface{}{
		{"Generated", generated.Local().Format(TimeLayout)},
		{"Total Visitors", r.Total},
		{"Checked In", r.CheckedIn},
		{"Checked Out", r.CheckedOut},
		{"No Show", r.NoShow},
		{"Pending", r.Pending},
		{"Average Check-in Time", r.AverageCheckInTime},
		{"Peak Hours", r.PeakHours},
	}
	if err := s.write(true, "Visitor Report"); err != nil {
		return err
	}
	for _, row := range rows {
		if err := s.write(false, row...); err != nil {
			return err
		}
	}

	s.skip()
	if err := s.write(true, "Top Employees", "Visitors"); err != nil {
		return err
	}
	for _, h := range r.TopEmployees {
		if err := s.write(false, h.Name, h.Visitors); err != nil {
			return err
		}
	}

	s.skip()
	if err := s.write(true, "Top Purposes", "Count"); err != nil {
		return err
	}
	for _, p := range r.TopPurposes {
		if err := s.write(false, p.Purpose, p.Count); err != nil {
			return err
		}
	}
	return nil
}
