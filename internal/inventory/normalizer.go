package inventory

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// Normalizer consolidates raw restock snapshot rows into one InventoryState
// per SKU and reconciles the two competing inbound pipeline figures.
type Normalizer struct {
	// Tolerance is the absolute difference between the direct and derived
	// inbound figures above which a discrepancy is recorded. Zero means any
	// non-zero difference is flagged.
	Tolerance int
}

// NewNormalizer returns a Normalizer with the default strict tolerance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize consolidates the snapshots per SKU. Rows sharing a SKU are summed
// before reconciliation, matching how the restock export can repeat a SKU per
// fulfillment channel.
//
// The reconciliation is an explicit tie-break, not an average: Inbound as
// directly reported wins over Working+Shipped+Receiving, and the disagreement
// is preserved as a DiscrepancyRecord for analyst review.
func (n *Normalizer) Normalize(snapshots []domain.InventorySnapshot) map[string]domain.InventoryState {
	merged := make(map[string]domain.InventorySnapshot, len(snapshots))
	for _, snap := range snapshots {
		sku := strings.TrimSpace(snap.SKU)
		if sku == "" {
			continue
		}
		acc := merged[sku]
		acc.SKU = sku
		acc.Available += snap.Available
		acc.FCTransfer += snap.FCTransfer
		acc.FCProcessing += snap.FCProcessing
		acc.Inbound += snap.Inbound
		acc.Working += snap.Working
		acc.Shipped += snap.Shipped
		acc.Receiving += snap.Receiving
		merged[sku] = acc
	}

	out := make(map[string]domain.InventoryState, len(merged))
	for sku, snap := range merged {
		out[sku] = n.resolve(snap)
	}
	return out
}

// Missing returns the InventoryState for a SKU that has no snapshot at all:
// all quantities zero, flagged unavailable rather than dropped.
func (n *Normalizer) Missing(sku string) domain.InventoryState {
	return domain.InventoryState{
		InventorySnapshot: domain.InventorySnapshot{SKU: sku},
		Unavailable:       true,
	}
}

func (n *Normalizer) resolve(snap domain.InventorySnapshot) domain.InventoryState {
	inboundDirect := snap.Inbound
	inboundDerived := snap.Working + snap.Shipped + snap.Receiving

	state := domain.InventoryState{
		InventorySnapshot: snap,
		InboundFinal:      inboundDirect,
	}

	delta := inboundDirect - inboundDerived
	if abs(delta) > n.Tolerance {
		state.Discrepancy = &domain.DiscrepancyRecord{
			SKU:              snap.SKU,
			ExpectedInbound:  inboundDirect,
			AlternateInbound: inboundDerived,
			Delta:            delta,
		}
		log.Debug().
			Str("sku", snap.SKU).
			Int("inbound_direct", inboundDirect).
			Int("inbound_derived", inboundDerived).
			Msg("inventory: inbound estimates disagree, keeping direct figure")
	}

	return state
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
