package saleswindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

func TestAggregateBucketsPerWindow(t *testing.T) {
	anchor := mustDate("2025-03-14")

	rows := []domain.DailySales{
		{SKU: "MK-100", Date: mustDate("2025-03-14"), Units: 3}, // 1 Day, 7 Days, 1-28
		{SKU: "MK-100", Date: mustDate("2025-03-08"), Units: 2}, // 7 Days, 1-28
		{SKU: "MK-100", Date: mustDate("2025-03-07"), Units: 5}, // 8-14, 1-28
		{SKU: "MK-100", Date: mustDate("2025-02-28"), Units: 4}, // 15-21, 1-28
		{SKU: "MK-100", Date: mustDate("2025-02-15"), Units: 1}, // 22-28, 1-28
		{SKU: "MK-100", Date: mustDate("2025-02-14"), Units: 9}, // 29-56
		{SKU: "MK-100", Date: mustDate("2025-01-17"), Units: 6}, // 57-84
	}

	sets := Aggregate(rows, anchor)
	require.Contains(t, sets, "MK-100")
	ws := sets["MK-100"]

	assert.Equal(t, 3, ws.Day1)
	assert.Equal(t, 5, ws.Week1)
	assert.Equal(t, 5, ws.Days8to14)
	assert.Equal(t, 4, ws.Days15to21)
	assert.Equal(t, 1, ws.Days22to28)
	assert.Equal(t, 15, ws.Days1to28)
	assert.Equal(t, 9, ws.Days29to56)
	assert.Equal(t, 6, ws.Days57to84)

	// (5+5+4+1)/4 and (15+9+6)/3, one decimal.
	assert.Equal(t, 3.8, ws.FourWeekAvg)
	assert.Equal(t, 10.0, ws.ThreeMonthAvg)
}

func TestAggregateDropsRowsOutsideSpan(t *testing.T) {
	anchor := mustDate("2025-03-14")

	rows := []domain.DailySales{
		{SKU: "MK-100", Date: mustDate("2024-12-20"), Units: 50}, // day 85, out
		{SKU: "MK-100", Date: mustDate("2025-03-15"), Units: 50}, // after anchor, out
		{SKU: "MK-100", Date: mustDate("2024-12-21"), Units: 2},  // day 84, in
	}

	sets := Aggregate(rows, anchor)
	require.Contains(t, sets, "MK-100")
	assert.Equal(t, 2, sets["MK-100"].Days57to84)
	assert.Equal(t, 0, sets["MK-100"].Days1to28)
}

func TestAggregateSkipsBlankSKU(t *testing.T) {
	anchor := mustDate("2025-03-14")

	sets := Aggregate([]domain.DailySales{
		{SKU: "  ", Date: anchor, Units: 4},
	}, anchor)

	assert.Empty(t, sets)
}

func TestAggregateZeroUnitRowStillRegistersSKU(t *testing.T) {
	anchor := mustDate("2025-03-14")

	// A SKU whose only rows carry zero units must still appear in the window
	// map with all-zero windows, or it silently drops out of the row universe.
	sets := Aggregate([]domain.DailySales{
		{SKU: "ZERO-ONLY", Date: anchor, Units: 0},
	}, anchor)

	require.Contains(t, sets, "ZERO-ONLY")
	assert.Equal(t, domain.WindowSet{}, sets["ZERO-ONLY"])
}

func TestAggregateZeroUnitRowOutsideSpanStillDropped(t *testing.T) {
	anchor := mustDate("2025-03-14")

	sets := Aggregate([]domain.DailySales{
		{SKU: "OLD", Date: mustDate("2024-01-01"), Units: 0},
	}, anchor)

	assert.Empty(t, sets)
}

func TestAggregateDeterministic(t *testing.T) {
	anchor := mustDate("2025-03-14")
	rows := []domain.DailySales{
		{SKU: "A-1", Date: mustDate("2025-03-10"), Units: 2},
		{SKU: "B-2", Date: mustDate("2025-03-11"), Units: 7},
		{SKU: "A-1", Date: mustDate("2025-02-01"), Units: 3},
	}

	first := Aggregate(rows, anchor)
	second := Aggregate(rows, anchor)
	assert.Equal(t, first, second)
}

func TestZero(t *testing.T) {
	ws := Zero()
	assert.Equal(t, domain.WindowSet{}, ws)
	assert.Equal(t, 0.0, ws.FourWeekAvg)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 3.8, round1(3.75))
	assert.Equal(t, 3.7, round1(3.74))
	assert.Equal(t, 0.0, round1(0))
	assert.Equal(t, -1.3, round1(-1.25))
}
