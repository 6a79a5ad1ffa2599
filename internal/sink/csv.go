package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// CSVSink writes the summary and the discrepancy report as CSV files under a
// directory, named by the run's anchor date. Row order is preserved, so
// identical inputs produce byte-identical files.
type CSVSink struct {
	Dir string
}

// NewCSVSink creates a sink writing into dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{Dir: dir}
}

func (s *CSVSink) Write(ctx context.Context, rows []domain.WeeklySummaryRow, report domain.DiscrepancyReport) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	date := report.AnchorDate.Format("20060102")

	summaryPath := filepath.Join(s.Dir, fmt.Sprintf("weekly_summary_%s.csv", date))
	if err := writeCSV(summaryPath, summaryColumns, len(rows), func(i int) []string {
		return summaryRecord(rows[i])
	}); err != nil {
		return err
	}

	reportPath := filepath.Join(s.Dir, fmt.Sprintf("discrepancies_%s.csv", date))
	if err := writeCSV(reportPath, discrepancyColumns, len(report.Discrepancies), func(i int) []string {
		return discrepancyRecord(report.Discrepancies[i])
	}); err != nil {
		return err
	}

	issuePath := filepath.Join(s.Dir, fmt.Sprintf("issues_%s.csv", date))
	if err := writeCSV(issuePath, issueColumns, len(report.Issues), func(i int) []string {
		return issueRecord(report.Issues[i])
	}); err != nil {
		return err
	}

	log.Info().
		Str("summary", summaryPath).
		Str("discrepancies", reportPath).
		Int("rows", len(rows)).
		Msg("sink: csv files written")
	return nil
}

func writeCSV(path string, columns []string, n int, record func(i int) []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(columns); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(record(i)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
