package report

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
	"github.com/andresuchdata/fba-weekly-summary/internal/inventory"
	"github.com/andresuchdata/fba-weekly-summary/internal/reference"
	"github.com/andresuchdata/fba-weekly-summary/internal/saleswindow"
	"github.com/andresuchdata/fba-weekly-summary/internal/source"
)

// Sources bundles the feeds a run consumes. Warehouse is optional: when nil
// the summary simply carries no warehouse quantities.
type Sources struct {
	Sales     source.SalesDataSource
	Inventory source.InventoryDataSource
	Mapping   source.MappingSource
	Carton    source.CartonSource
	Warehouse source.WarehouseSource
}

// Runner executes one batch run: fetch all feeds, transform, assemble, hand
// off to the sink. It owns no state between runs.
type Runner struct {
	sources   Sources
	sink      source.ReportSink
	tolerance int
}

// NewRunner wires a runner from its collaborators.
func NewRunner(sources Sources, sink source.ReportSink, inboundTolerance int) *Runner {
	return &Runner{sources: sources, sink: sink, tolerance: inboundTolerance}
}

// Result carries the outputs of a completed run.
type Result struct {
	AnchorDate time.Time
	Rows       []domain.WeeklySummaryRow
	Report     domain.DiscrepancyReport
}

// Run performs a single batch run anchored to the given date. A zero anchor
// means "yesterday relative to now". The anchor is computed exactly once here
// and passed immutably through every stage.
//
// The three ingestion paths are independent pure transformations, so they
// fetch in parallel; any fetch failure or an entirely empty feed aborts the
// run before core computation begins (fail-fast at the boundary). Row-scoped
// problems never abort: they end up itemized in the discrepancy report.
func (r *Runner) Run(ctx context.Context, anchor time.Time) (*Result, error) {
	if anchor.IsZero() {
		anchor = saleswindow.AnchorDate(time.Now())
	} else {
		anchor = saleswindow.DateOnly(anchor)
	}
	start, end := saleswindow.FullRange(anchor)

	log.Info().
		Str("anchor", anchor.Format("2006-01-02")).
		Str("range_start", start.Format("2006-01-02")).
		Str("range_end", end.Format("2006-01-02")).
		Msg("report: starting batch run")

	var (
		salesRows    []domain.DailySales
		snapshots    []domain.InventorySnapshot
		mappings     []reference.MappingRow
		cartons      []reference.CartonRow
		warehouseQty map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.sources.Sales.Fetch(gctx, start, end)
		if err != nil {
			return &source.BoundaryError{Source: "sales", Err: err}
		}
		if len(rows) == 0 {
			return &source.BoundaryError{Source: "sales"}
		}
		salesRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.sources.Inventory.Fetch(gctx)
		if err != nil {
			return &source.BoundaryError{Source: "inventory", Err: err}
		}
		if len(rows) == 0 {
			return &source.BoundaryError{Source: "inventory"}
		}
		snapshots = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.sources.Mapping.Fetch(gctx)
		if err != nil {
			return &source.BoundaryError{Source: "reference-mapping", Err: err}
		}
		if len(rows) == 0 {
			return &source.BoundaryError{Source: "reference-mapping"}
		}
		mappings = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.sources.Carton.Fetch(gctx)
		if err != nil {
			return &source.BoundaryError{Source: "reference-carton", Err: err}
		}
		// An empty carton sheet is unusual but survivable: every row just
		// reports carton qty missing.
		cartons = rows
		return nil
	})
	if r.sources.Warehouse != nil {
		g.Go(func() error {
			qty, err := r.sources.Warehouse.Fetch(gctx)
			if err != nil {
				return &source.BoundaryError{Source: "warehouse-inventory", Err: err}
			}
			// An empty warehouse view just leaves the column blank.
			warehouseQty = qty
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolver := reference.NewResolver(mappings, cartons)

	normalizer := inventory.NewNormalizer()
	normalizer.Tolerance = r.tolerance
	invStates := normalizer.Normalize(snapshots)

	windowSets := saleswindow.Aggregate(salesRows, anchor)

	assembler := NewAssembler(resolver, normalizer)
	rows, rep := assembler.Assemble(anchor, invStates, windowSets, warehouseQty)

	log.Info().
		Int("rows", len(rows)).
		Int("discrepancies", len(rep.Discrepancies)).
		Int("issues", len(rep.Issues)).
		Msg("report: batch run assembled")

	if r.sink != nil {
		if err := r.sink.Write(ctx, rows, rep); err != nil {
			return nil, err
		}
	}

	return &Result{AnchorDate: anchor, Rows: rows, Report: rep}, nil
}
