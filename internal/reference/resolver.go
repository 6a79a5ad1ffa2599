package reference

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// MappingRow is one raw row from the mapping/price sheet (SKU keyed).
type MappingRow struct {
	SKU     string
	ASIN    string
	MiniSKU string
	Price   float64
}

// CartonRow is one raw row from the master carton sheet (Mini SKU keyed).
type CartonRow struct {
	MiniSKU      string
	QtyPerCarton int
}

// Resolver holds the in-memory SKU -> ReferenceEntry mapping for one run.
type Resolver struct {
	entries map[string]domain.ReferenceEntry
}

// NewResolver builds the resolver from the two reference feeds. Source sheets
// are not guaranteed unique: duplicate SKU rows (and duplicate Mini SKU carton
// rows) resolve last-row-wins, with a logged warning for the dropped row.
func NewResolver(mappings []MappingRow, cartons []CartonRow) *Resolver {
	cartonQty := make(map[string]int, len(cartons))
	for _, c := range cartons {
		mini := strings.TrimSpace(c.MiniSKU)
		if mini == "" {
			continue
		}
		if _, seen := cartonQty[mini]; seen {
			log.Warn().
				Str("mini_sku", mini).
				Msg("reference: duplicate mini sku in master carton sheet, keeping last row")
		}
		cartonQty[mini] = c.QtyPerCarton
	}

	entries := make(map[string]domain.ReferenceEntry, len(mappings))
	for _, m := range mappings {
		sku := strings.TrimSpace(m.SKU)
		if sku == "" {
			continue
		}
		if _, seen := entries[sku]; seen {
			log.Warn().
				Str("sku", sku).
				Msg("reference: duplicate sku in mapping sheet, keeping last row")
		}

		entry := domain.ReferenceEntry{
			SKU:     sku,
			ASIN:    strings.TrimSpace(m.ASIN),
			MiniSKU: strings.TrimSpace(m.MiniSKU),
			Price:   m.Price,
		}
		if entry.MiniSKU != "" {
			if qty, ok := cartonQty[entry.MiniSKU]; ok {
				q := qty
				entry.QtyPerCarton = &q
			}
		}
		entries[sku] = entry
	}

	return &Resolver{entries: entries}
}

// Resolve returns the reference entry for a SKU. Absence is an expected gap,
// not an error: the caller proceeds with those fields empty.
func (r *Resolver) Resolve(sku string) (domain.ReferenceEntry, bool) {
	entry, ok := r.entries[strings.TrimSpace(sku)]
	return entry, ok
}

// SKUs returns every SKU known to the resolver. Used by the assembler to
// build the row universe.
func (r *Resolver) SKUs() []string {
	out := make([]string, 0, len(r.entries))
	for sku := range r.entries {
		out = append(out, sku)
	}
	return out
}

// AsinToSKU returns the ASIN -> SKU lookup derived from the mapping sheet,
// used by the sales source to fan ASIN-grain rows out to SKU grain. When
// multiple SKUs share an ASIN the first mapping-sheet occurrence wins.
func AsinToSKU(mappings []MappingRow) map[string]string {
	out := make(map[string]string, len(mappings))
	for _, m := range mappings {
		asin := normalizeASIN(m.ASIN)
		sku := strings.TrimSpace(m.SKU)
		if asin == "" || sku == "" {
			continue
		}
		if _, ok := out[asin]; !ok {
			out[asin] = stripLocSuffix(sku)
		}
	}
	return out
}

// normalizeASIN strips whitespace and any trailing "-loc" marker so the
// lookup is keyed by the base catalog identifier.
func normalizeASIN(asin string) string {
	return stripLocSuffix(strings.TrimSpace(asin))
}

func stripLocSuffix(s string) string {
	if strings.HasSuffix(strings.ToLower(s), "-loc") {
		return s[:len(s)-4]
	}
	return s
}
