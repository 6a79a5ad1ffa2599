package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
	"github.com/andresuchdata/fba-weekly-summary/internal/inventory"
	"github.com/andresuchdata/fba-weekly-summary/internal/metrics"
	"github.com/andresuchdata/fba-weekly-summary/internal/reference"
	"github.com/andresuchdata/fba-weekly-summary/internal/saleswindow"
)

// Assembler joins the per-SKU outputs of the three ingestion paths into the
// final ordered record set plus the discrepancy report.
type Assembler struct {
	resolver   *reference.Resolver
	normalizer *inventory.Normalizer
	calculator *metrics.Calculator
}

// NewAssembler creates an assembler over the run's resolver output.
func NewAssembler(resolver *reference.Resolver, normalizer *inventory.Normalizer) *Assembler {
	return &Assembler{
		resolver:   resolver,
		normalizer: normalizer,
		calculator: metrics.NewCalculator(),
	}
}

// Assemble produces one row per SKU in the union of all three sources, sorted
// lexicographically by SKU so repeated runs over unchanged inputs are
// byte-identical. A SKU present in only one source still yields a row with
// the other fields empty; every field that could not be computed is itemized
// in the report. warehouseQty is a left merge: it annotates rows already in
// the universe and never adds SKUs of its own. Nil means the feed was off.
func (a *Assembler) Assemble(
	anchor time.Time,
	invStates map[string]domain.InventoryState,
	windowSets map[string]domain.WindowSet,
	warehouseQty map[string]int,
) ([]domain.WeeklySummaryRow, domain.DiscrepancyReport) {
	universe := make(map[string]struct{}, len(invStates))
	for _, sku := range a.resolver.SKUs() {
		universe[sku] = struct{}{}
	}
	for sku := range invStates {
		universe[sku] = struct{}{}
	}
	for sku := range windowSets {
		universe[sku] = struct{}{}
	}

	skus := make([]string, 0, len(universe))
	for sku := range universe {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	report := domain.DiscrepancyReport{AnchorDate: anchor}
	rows := make([]domain.WeeklySummaryRow, 0, len(skus))

	for _, sku := range skus {
		var ref *domain.ReferenceEntry
		if entry, ok := a.resolver.Resolve(sku); ok {
			ref = &entry
		} else {
			report.Issues = append(report.Issues, domain.RowIssue{
				SKU:    sku,
				Code:   domain.IssueMissingReferenceData,
				Detail: "no reference entry: asin, price and carton fields left empty",
			})
		}

		inv, ok := invStates[sku]
		if !ok {
			inv = a.normalizer.Missing(sku)
			report.Issues = append(report.Issues, domain.RowIssue{
				SKU:    sku,
				Code:   domain.IssueInventoryUnavailable,
				Detail: "no inventory snapshot: quantities treated as zero",
			})
		}
		if inv.Discrepancy != nil {
			report.Discrepancies = append(report.Discrepancies, *inv.Discrepancy)
		}

		windows, ok := windowSets[sku]
		if !ok {
			windows = saleswindow.Zero()
		}

		metricSet, issue := a.calculator.Compute(sku, ref, inv, windows)
		if issue != nil {
			report.Issues = append(report.Issues, *issue)
		}

		row := domain.WeeklySummaryRow{
			SKU:       sku,
			Reference: ref,
			Inventory: inv,
			Windows:   windows,
			Metrics:   metricSet,
		}
		if qty, ok := warehouseQty[sku]; ok {
			row.WarehouseQty = &qty
		}
		rows = append(rows, row)
	}

	// Rows are already in SKU order; keep the side channels deterministic too.
	sort.Slice(report.Discrepancies, func(i, j int) bool {
		return report.Discrepancies[i].SKU < report.Discrepancies[j].SKU
	})

	return rows, report
}

// Summary renders a short human-readable digest of the report for logs.
func Summary(rows []domain.WeeklySummaryRow, report domain.DiscrepancyReport) string {
	return fmt.Sprintf("%d rows, %d inbound discrepancies, %d row issues",
		len(rows), len(report.Discrepancies), len(report.Issues))
}
