package metrics

import (
	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// stockWeeksDivisor is the fixed weekly divisor of the summary sheet. The
// chain divides by this constant, never by a variable, so a zero stock sum
// simply yields zero.
const stockWeeksDivisor = 6.0

// Calculator computes the derived replenishment columns A..G for one SKU.
type Calculator struct{}

// NewCalculator creates a new metric calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute applies the formula chain in order. Each step depends only on
// earlier steps and the three inputs.
func (c *Calculator) Compute(sku string, ref *domain.ReferenceEntry, inv domain.InventoryState, windows domain.WindowSet) (domain.MetricSet, *domain.RowIssue) {
	m := domain.MetricSet{}
	currentStock := float64(inv.CurrentStock())

	// B: sales velocity proxy, straight from the four-week average.
	m.AmountPerWeek = windows.FourWeekAvg

	// A: weeks of stock at the fixed divisor.
	m.StockWeeks = currentStock / stockWeeksDivisor

	// C: projected demand over the divisor horizon.
	m.Times = m.AmountPerWeek * stockWeeksDivisor

	// D (Pick) stays unset: reserved manual field.

	// E: shortfall against current stock. Negative means surplus and passes
	// through unmodified.
	m.NeedToShip = m.Times - currentStock

	// F, G: carton math requires a reference entry with a usable carton qty.
	if ref != nil {
		m.QtyPerCarton = ref.QtyPerCarton
	}
	if m.QtyPerCarton == nil || *m.QtyPerCarton == 0 {
		return m, &domain.RowIssue{
			SKU:    sku,
			Code:   domain.IssueCartonQtyMissingOrZero,
			Detail: "num boxes (G) left unset: carton quantity missing or zero",
		}
	}

	boxes := m.NeedToShip / float64(*m.QtyPerCarton)
	m.NumBoxes = &boxes
	return m, nil
}
