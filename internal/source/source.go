package source

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
	"github.com/andresuchdata/fba-weekly-summary/internal/reference"
)

// SalesDataSource delivers daily-grain units-ordered rows for a date range.
// Pre-bucketed windows are not accepted: bucketing belongs to the core.
type SalesDataSource interface {
	Fetch(ctx context.Context, start, end time.Time) ([]domain.DailySales, error)
}

// InventoryDataSource delivers the raw per-SKU restock snapshot rows.
type InventoryDataSource interface {
	Fetch(ctx context.Context) ([]domain.InventorySnapshot, error)
}

// MappingSource delivers the mapping/price reference rows (SKU keyed).
type MappingSource interface {
	Fetch(ctx context.Context) ([]reference.MappingRow, error)
}

// CartonSource delivers the master carton reference rows (Mini SKU keyed).
type CartonSource interface {
	Fetch(ctx context.Context) ([]reference.CartonRow, error)
}

// WarehouseSource delivers per-SKU on-hand quantities from the local
// warehouse system. The map is left-merged onto the summary: it annotates
// rows already in the universe and never adds SKUs of its own.
type WarehouseSource interface {
	Fetch(ctx context.Context) (map[string]int, error)
}

// ReportSink receives the finished, ordered rows and the discrepancy report.
// All presentation concerns (headers, formatting, file format) live behind it.
type ReportSink interface {
	Write(ctx context.Context, rows []domain.WeeklySummaryRow, report domain.DiscrepancyReport) error
}

// BoundaryError is a fatal fetch failure: the named feed was unreachable or
// entirely empty, so the run aborts before core computation begins.
type BoundaryError struct {
	Source string
	Err    error
}

func (e *BoundaryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("source %s: empty feed", e.Source)
	}
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *BoundaryError) Unwrap() error { return e.Err }
