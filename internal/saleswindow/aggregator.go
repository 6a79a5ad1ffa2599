package saleswindow

import (
	"math"
	"strings"
	"time"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// Aggregate buckets daily sales rows into the eight windows per SKU and
// computes the two rolling averages. The anchor is fixed for the whole call;
// rows outside every window are dropped. A SKU with rows anywhere in the
// 84-day span gets a full WindowSet, with zero for any empty window — a
// zero-unit row still registers its SKU, so the row universe never loses it.
func Aggregate(rows []domain.DailySales, anchor time.Time) map[string]domain.WindowSet {
	windows := BuildWindows(anchor)

	sums := make(map[string][]int)
	for _, row := range rows {
		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			continue
		}
		for i, w := range windows {
			if !w.Contains(row.Date) {
				continue
			}
			if _, ok := sums[sku]; !ok {
				sums[sku] = make([]int, len(windows))
			}
			sums[sku][i] += row.Units
		}
	}

	out := make(map[string]domain.WindowSet, len(sums))
	for sku, s := range sums {
		out[sku] = buildWindowSet(s)
	}
	return out
}

// Zero returns the WindowSet for a SKU with no sales rows at all: every
// window 0, not absent.
func Zero() domain.WindowSet {
	return domain.WindowSet{}
}

func buildWindowSet(sums []int) domain.WindowSet {
	ws := domain.WindowSet{
		Day1:       sums[0],
		Week1:      sums[1],
		Days8to14:  sums[2],
		Days15to21: sums[3],
		Days22to28: sums[4],
		Days1to28:  sums[5],
		Days29to56: sums[6],
		Days57to84: sums[7],
	}

	// Four weekly buckets, fixed divisor. No sparsity correction: a SKU listed
	// mid-window legitimately averages lower.
	fourWeek := float64(ws.Week1+ws.Days8to14+ws.Days15to21+ws.Days22to28) / 4.0

	// Three month-sized periods: the combined 1-28 bucket, then 29-56, 57-84.
	threeMonth := float64(ws.Days1to28+ws.Days29to56+ws.Days57to84) / 3.0

	ws.FourWeekAvg = round1(fourWeek)
	ws.ThreeMonthAvg = round1(threeMonth)
	return ws
}

// round1 rounds to one decimal place, the report's precision for averages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
