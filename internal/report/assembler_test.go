package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
	"github.com/andresuchdata/fba-weekly-summary/internal/inventory"
	"github.com/andresuchdata/fba-weekly-summary/internal/reference"
	"github.com/andresuchdata/fba-weekly-summary/internal/saleswindow"
)

func testAnchor() time.Time {
	return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func issueCodesFor(report domain.DiscrepancyReport, sku string) []domain.IssueCode {
	var codes []domain.IssueCode
	for _, issue := range report.Issues {
		if issue.SKU == sku {
			codes = append(codes, issue.Code)
		}
	}
	return codes
}

func TestAssembleUniverseIsUnionOfSources(t *testing.T) {
	resolver := reference.NewResolver(
		[]reference.MappingRow{{SKU: "REF-ONLY", ASIN: "B001", MiniSKU: "M1"}},
		[]reference.CartonRow{{MiniSKU: "M1", QtyPerCarton: 4}},
	)
	normalizer := inventory.NewNormalizer()

	invStates := normalizer.Normalize([]domain.InventorySnapshot{
		{SKU: "INV-ONLY", Available: 5},
	})
	windowSets := map[string]domain.WindowSet{
		"SALES-ONLY": {Week1: 3, FourWeekAvg: 0.8},
	}

	rows, report := NewAssembler(resolver, normalizer).Assemble(testAnchor(), invStates, windowSets, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, "INV-ONLY", rows[0].SKU)
	assert.Equal(t, "REF-ONLY", rows[1].SKU)
	assert.Equal(t, "SALES-ONLY", rows[2].SKU)

	// A SKU missing from a source gets the matching issue, never a dropped row.
	assert.Contains(t, issueCodesFor(report, "INV-ONLY"), domain.IssueMissingReferenceData)
	assert.Contains(t, issueCodesFor(report, "REF-ONLY"), domain.IssueInventoryUnavailable)
	assert.Contains(t, issueCodesFor(report, "SALES-ONLY"), domain.IssueMissingReferenceData)
	assert.Contains(t, issueCodesFor(report, "SALES-ONLY"), domain.IssueInventoryUnavailable)
}

func TestAssembleIncludesZeroUnitSalesSKU(t *testing.T) {
	resolver := reference.NewResolver(nil, nil)
	normalizer := inventory.NewNormalizer()

	// A SKU seen only through zero-unit sales rows still produces a row.
	windowSets := saleswindow.Aggregate([]domain.DailySales{
		{SKU: "ZERO-ONLY", Date: testAnchor(), Units: 0},
	}, testAnchor())

	rows, _ := NewAssembler(resolver, normalizer).Assemble(testAnchor(), nil, windowSets, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, "ZERO-ONLY", rows[0].SKU)
	assert.Equal(t, domain.WindowSet{}, rows[0].Windows)
}

func TestAssembleWarehouseQtyIsLeftMerge(t *testing.T) {
	resolver := reference.NewResolver(nil, nil)
	normalizer := inventory.NewNormalizer()

	invStates := normalizer.Normalize([]domain.InventorySnapshot{
		{SKU: "MK-100", Available: 5},
		{SKU: "MK-200", Available: 8},
	})
	warehouse := map[string]int{
		"MK-100":        42,
		"WAREHOUSE-NEW": 9, // not in the universe: must not create a row
	}

	rows, _ := NewAssembler(resolver, normalizer).Assemble(testAnchor(), invStates, nil, warehouse)

	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].WarehouseQty)
	assert.Equal(t, 42, *rows[0].WarehouseQty)
	assert.Nil(t, rows[1].WarehouseQty)
}

func TestAssembleMissingInventoryTreatedAsZero(t *testing.T) {
	resolver := reference.NewResolver(
		[]reference.MappingRow{{SKU: "MK-100", ASIN: "B001", MiniSKU: "M1"}},
		[]reference.CartonRow{{MiniSKU: "M1", QtyPerCarton: 10}},
	)
	normalizer := inventory.NewNormalizer()

	rows, _ := NewAssembler(resolver, normalizer).Assemble(testAnchor(), nil, map[string]domain.WindowSet{
		"MK-100": {FourWeekAvg: 5},
	}, nil)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.True(t, row.Inventory.Unavailable)
	assert.Equal(t, 0, row.Inventory.CurrentStock())
	// Metric chain still runs against zero stock.
	assert.Equal(t, 30.0, row.Metrics.Times)
	assert.Equal(t, 30.0, row.Metrics.NeedToShip)
}

func TestAssembleNoSalesGetsZeroWindows(t *testing.T) {
	resolver := reference.NewResolver(nil, nil)
	normalizer := inventory.NewNormalizer()

	invStates := normalizer.Normalize([]domain.InventorySnapshot{
		{SKU: "MK-100", Available: 12},
	})

	rows, _ := NewAssembler(resolver, normalizer).Assemble(testAnchor(), invStates, nil, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, domain.WindowSet{}, rows[0].Windows)
	assert.Equal(t, 0.0, rows[0].Metrics.AmountPerWeek)
}

func TestAssembleCollectsDiscrepancies(t *testing.T) {
	resolver := reference.NewResolver(nil, nil)
	normalizer := inventory.NewNormalizer()

	invStates := normalizer.Normalize([]domain.InventorySnapshot{
		{SKU: "ZZ-1", Inbound: 9, Working: 2},
		{SKU: "AA-1", Inbound: 5, Working: 1},
		{SKU: "MM-1", Inbound: 3, Working: 3},
	})

	_, report := NewAssembler(resolver, normalizer).Assemble(testAnchor(), invStates, nil, nil)

	require.Len(t, report.Discrepancies, 2)
	assert.Equal(t, "AA-1", report.Discrepancies[0].SKU)
	assert.Equal(t, "ZZ-1", report.Discrepancies[1].SKU)
	assert.Equal(t, testAnchor(), report.AnchorDate)
}

func TestAssembleDeterministicOrdering(t *testing.T) {
	resolver := reference.NewResolver(
		[]reference.MappingRow{
			{SKU: "C-3"}, {SKU: "A-1"}, {SKU: "B-2"},
		},
		nil,
	)
	normalizer := inventory.NewNormalizer()

	first, _ := NewAssembler(resolver, normalizer).Assemble(testAnchor(), nil, nil, nil)
	second, _ := NewAssembler(resolver, normalizer).Assemble(testAnchor(), nil, nil, nil)

	require.Equal(t, first, second)
	assert.Equal(t, "A-1", first[0].SKU)
	assert.Equal(t, "B-2", first[1].SKU)
	assert.Equal(t, "C-3", first[2].SKU)
}

func TestSummary(t *testing.T) {
	rows := []domain.WeeklySummaryRow{{SKU: "A"}, {SKU: "B"}}
	report := domain.DiscrepancyReport{
		Discrepancies: []domain.DiscrepancyRecord{{SKU: "A"}},
		Issues:        []domain.RowIssue{{SKU: "B"}, {SKU: "B"}},
	}
	assert.Equal(t, "2 rows, 1 inbound discrepancies, 2 row issues", Summary(rows, report))
}
