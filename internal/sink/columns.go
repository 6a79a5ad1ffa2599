package sink

import (
	"strconv"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// summaryColumns is the fixed output column order of the weekly summary.
// Reordering this breaks the analyst sheet downstream.
var summaryColumns = []string{
	"SKU",
	"ASIN",
	"Mini SKU",
	"Selling Price",
	"Available",
	"FC Transfer",
	"FC Processing",
	"Inbound",
	"1 Day",
	"7 Days",
	"8-14",
	"15-21",
	"22-28",
	"1-28",
	"29-56",
	"57-84",
	"4 Week Avg",
	"3 Month Avg",
	"Stock Weeks",
	"Amount Per Week",
	"Times",
	"Pick",
	"Need To Ship",
	"Qty Per Carton",
	"Num Boxes",
	"Warehouse Qty",
}

// summaryRecord renders one row as strings in summaryColumns order. Fields
// that could not be computed stay empty instead of printing zero.
func summaryRecord(row domain.WeeklySummaryRow) []string {
	var asin, miniSKU, price string
	if row.Reference != nil {
		asin = row.Reference.ASIN
		miniSKU = row.Reference.MiniSKU
		price = formatFloat(row.Reference.Price)
	}

	inv := row.Inventory
	var available, fcTransfer, fcProcessing, inbound string
	if !inv.Unavailable {
		available = strconv.Itoa(inv.Available)
		fcTransfer = strconv.Itoa(inv.FCTransfer)
		fcProcessing = strconv.Itoa(inv.FCProcessing)
		inbound = strconv.Itoa(inv.InboundFinal)
	}

	w := row.Windows
	m := row.Metrics

	var qtyPerCarton, numBoxes string
	if m.QtyPerCarton != nil {
		qtyPerCarton = strconv.Itoa(*m.QtyPerCarton)
	}
	if m.NumBoxes != nil {
		numBoxes = formatFloat(*m.NumBoxes)
	}

	var pick string
	if m.Pick != nil {
		pick = formatFloat(*m.Pick)
	}

	var warehouseQty string
	if row.WarehouseQty != nil {
		warehouseQty = strconv.Itoa(*row.WarehouseQty)
	}

	return []string{
		row.SKU,
		asin,
		miniSKU,
		price,
		available,
		fcTransfer,
		fcProcessing,
		inbound,
		strconv.Itoa(w.Day1),
		strconv.Itoa(w.Week1),
		strconv.Itoa(w.Days8to14),
		strconv.Itoa(w.Days15to21),
		strconv.Itoa(w.Days22to28),
		strconv.Itoa(w.Days1to28),
		strconv.Itoa(w.Days29to56),
		strconv.Itoa(w.Days57to84),
		formatFloat(w.FourWeekAvg),
		formatFloat(w.ThreeMonthAvg),
		formatFloat(m.StockWeeks),
		formatFloat(m.AmountPerWeek),
		formatFloat(m.Times),
		pick,
		formatFloat(m.NeedToShip),
		qtyPerCarton,
		numBoxes,
		warehouseQty,
	}
}

var discrepancyColumns = []string{"SKU", "Inbound (direct)", "Inbound (derived)", "Delta"}

func discrepancyRecord(d domain.DiscrepancyRecord) []string {
	return []string{
		d.SKU,
		strconv.Itoa(d.ExpectedInbound),
		strconv.Itoa(d.AlternateInbound),
		strconv.Itoa(d.Delta),
	}
}

var issueColumns = []string{"SKU", "Code", "Detail"}

func issueRecord(i domain.RowIssue) []string {
	return []string{i.SKU, string(i.Code), i.Detail}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
