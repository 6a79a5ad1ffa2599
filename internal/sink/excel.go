package sink

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

const (
	summarySheet       = "Weekly Summary"
	discrepanciesSheet = "Discrepancies"
	issuesSheet        = "Issues"
)

// ExcelSink writes the summary workbook: the row set on one sheet and the
// discrepancy report on two side sheets.
type ExcelSink struct {
	Path string
}

// NewExcelSink creates a sink writing to the given workbook path.
func NewExcelSink(path string) *ExcelSink {
	return &ExcelSink{Path: path}
}

func (s *ExcelSink) Write(ctx context.Context, rows []domain.WeeklySummaryRow, report domain.DiscrepancyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	// excelize always starts with "Sheet1"; rename it to the summary sheet.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	if err := writeSheet(f, summarySheet, summaryColumns, len(rows), func(i int) []string {
		return summaryRecord(rows[i])
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(discrepanciesSheet); err != nil {
		return fmt.Errorf("create discrepancies sheet: %w", err)
	}
	if err := writeSheet(f, discrepanciesSheet, discrepancyColumns, len(report.Discrepancies), func(i int) []string {
		return discrepancyRecord(report.Discrepancies[i])
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(issuesSheet); err != nil {
		return fmt.Errorf("create issues sheet: %w", err)
	}
	if err := writeSheet(f, issuesSheet, issueColumns, len(report.Issues), func(i int) []string {
		return issueRecord(report.Issues[i])
	}); err != nil {
		return err
	}

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.Path, err)
	}

	log.Info().
		Str("path", s.Path).
		Int("rows", len(rows)).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("sink: workbook written")
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, n int, record func(i int) []string) error {
	if err := setRow(f, sheet, 1, columns); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := setRow(f, sheet, i+2, record(i)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}
