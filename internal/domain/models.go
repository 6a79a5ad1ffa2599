// internal/domain/models.go
package domain

import "time"

// ReferenceEntry is the per-SKU reference data joined from the mapping/price
// sheet and the master carton sheet. ASIN is an attribute, not a key: several
// SKUs may share one ASIN.
type ReferenceEntry struct {
	SKU          string  `json:"sku"`
	ASIN         string  `json:"asin"`
	MiniSKU      string  `json:"mini_sku"`
	Price        float64 `json:"price"`
	QtyPerCarton *int    `json:"qty_per_carton,omitempty"`
}

// InventorySnapshot is a single raw per-SKU row from the restock inventory
// report. All quantities are non-negative.
type InventorySnapshot struct {
	SKU          string `json:"sku"`
	Available    int    `json:"available" db:"available"`
	FCTransfer   int    `json:"fc_transfer" db:"fc_transfer"`
	FCProcessing int    `json:"fc_processing" db:"fc_processing"`
	Inbound      int    `json:"inbound" db:"inbound"`
	Working      int    `json:"working" db:"working"`
	Shipped      int    `json:"shipped" db:"shipped"`
	Receiving    int    `json:"receiving" db:"receiving"`
}

// InventoryState is the consolidated inventory position for one SKU after
// normalization. InboundFinal is the resolved inbound pipeline quantity; the
// directly reported figure always wins over the derived one.
type InventoryState struct {
	InventorySnapshot

	InboundFinal int                `json:"inbound_final"`
	Unavailable  bool               `json:"unavailable"`
	Discrepancy  *DiscrepancyRecord `json:"discrepancy,omitempty"`
}

// CurrentStock is the total sellable-or-in-pipeline quantity used by the
// metric chain.
func (s InventoryState) CurrentStock() int {
	return s.Available + s.FCTransfer + s.FCProcessing + s.InboundFinal
}

// DailySales is one day of units ordered for a SKU, the grain the sales
// source must deliver. Bucketing into windows happens downstream.
type DailySales struct {
	SKU   string    `json:"sku"`
	Date  time.Time `json:"date"`
	Units int       `json:"units"`
}

// WindowSet holds the eight window sums for one SKU plus the two rolling
// averages. Window sums are whole units; the averages carry one decimal.
type WindowSet struct {
	Day1       int `json:"day_1"`
	Week1      int `json:"days_7"`
	Days8to14  int `json:"days_8_14"`
	Days15to21 int `json:"days_15_21"`
	Days22to28 int `json:"days_22_28"`
	Days1to28  int `json:"days_1_28"`
	Days29to56 int `json:"days_29_56"`
	Days57to84 int `json:"days_57_84"`

	FourWeekAvg   float64 `json:"four_week_avg"`
	ThreeMonthAvg float64 `json:"three_month_avg"`
}

// MetricSet is the derived replenishment columns A..G for one SKU.
// Pick (D) is a reserved manual field and is never computed here. NumBoxes (G)
// is nil when the carton quantity is missing or zero.
type MetricSet struct {
	StockWeeks    float64  `json:"stock_weeks"`              // A
	AmountPerWeek float64  `json:"amount_per_week"`          // B
	Times         float64  `json:"times"`                    // C
	Pick          *float64 `json:"pick,omitempty"`           // D, reserved
	NeedToShip    float64  `json:"need_to_ship"`             // E, may be negative
	QtyPerCarton  *int     `json:"qty_per_carton,omitempty"` // F
	NumBoxes      *float64 `json:"num_boxes,omitempty"`      // G
}

// DiscrepancyRecord captures a disagreement between the two independently
// sourced inbound estimates for one SKU.
type DiscrepancyRecord struct {
	SKU              string `json:"sku" db:"sku"`
	ExpectedInbound  int    `json:"expected_inbound" db:"expected_inbound"`
	AlternateInbound int    `json:"alternate_inbound" db:"alternate_inbound"`
	Delta            int    `json:"delta" db:"delta"`
}

// WeeklySummaryRow is the final denormalized record for one SKU. It is built
// once per run by the assembler and never mutated afterwards.
type WeeklySummaryRow struct {
	SKU string `json:"sku"`

	Reference *ReferenceEntry `json:"reference,omitempty"`
	Inventory InventoryState  `json:"inventory"`
	Windows   WindowSet       `json:"windows"`
	Metrics   MetricSet       `json:"metrics"`

	// WarehouseQty is the on-hand quantity at the local warehouse, annotated
	// onto the row when the warehouse feed is configured. Nil means the feed
	// was off or had no entry for this SKU.
	WarehouseQty *int `json:"warehouse_qty,omitempty"`
}

// IssueCode classifies a row-scoped condition that prevented part of a row
// from being computed. None of these abort a run.
type IssueCode string

const (
	IssueMissingReferenceData   IssueCode = "missing_reference_data"
	IssueInventoryUnavailable   IssueCode = "inventory_unavailable"
	IssueCartonQtyMissingOrZero IssueCode = "carton_qty_missing_or_zero"
)

// RowIssue is one itemized per-SKU condition surfaced in the discrepancy
// report.
type RowIssue struct {
	SKU    string    `json:"sku" db:"sku"`
	Code   IssueCode `json:"code" db:"code"`
	Detail string    `json:"detail" db:"detail"`
}

// DiscrepancyReport aggregates every inbound discrepancy and row-scoped issue
// of a run, for the output collaborator to render or log.
type DiscrepancyReport struct {
	AnchorDate    time.Time           `json:"anchor_date"`
	Discrepancies []DiscrepancyRecord `json:"discrepancies"`
	Issues        []RowIssue          `json:"issues"`
}
