package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverJoinsCartonByMiniSKU(t *testing.T) {
	r := NewResolver(
		[]MappingRow{
			{SKU: "MK-100", ASIN: "B00TEST001", MiniSKU: "M100", Price: 19.99},
		},
		[]CartonRow{
			{MiniSKU: "M100", QtyPerCarton: 12},
		},
	)

	entry, ok := r.Resolve("MK-100")
	require.True(t, ok)
	assert.Equal(t, "B00TEST001", entry.ASIN)
	assert.Equal(t, "M100", entry.MiniSKU)
	assert.Equal(t, 19.99, entry.Price)
	require.NotNil(t, entry.QtyPerCarton)
	assert.Equal(t, 12, *entry.QtyPerCarton)
}

func TestResolverMissingCartonLeavesQtyNil(t *testing.T) {
	r := NewResolver(
		[]MappingRow{{SKU: "MK-100", ASIN: "B00TEST001", MiniSKU: "M100"}},
		nil,
	)

	entry, ok := r.Resolve("MK-100")
	require.True(t, ok)
	assert.Nil(t, entry.QtyPerCarton)
}

func TestResolverDuplicatesLastRowWins(t *testing.T) {
	r := NewResolver(
		[]MappingRow{
			{SKU: "MK-100", ASIN: "B00FIRST", MiniSKU: "M1"},
			{SKU: "MK-100", ASIN: "B00SECOND", MiniSKU: "M2"},
		},
		[]CartonRow{
			{MiniSKU: "M2", QtyPerCarton: 6},
			{MiniSKU: "M2", QtyPerCarton: 8},
		},
	)

	entry, ok := r.Resolve("MK-100")
	require.True(t, ok)
	assert.Equal(t, "B00SECOND", entry.ASIN)
	require.NotNil(t, entry.QtyPerCarton)
	assert.Equal(t, 8, *entry.QtyPerCarton)
}

func TestResolverTrimsAndSkipsBlanks(t *testing.T) {
	r := NewResolver(
		[]MappingRow{
			{SKU: "  MK-100  ", ASIN: " B00TEST001 "},
			{SKU: "   "},
		},
		[]CartonRow{{MiniSKU: "  "}},
	)

	entry, ok := r.Resolve(" MK-100 ")
	require.True(t, ok)
	assert.Equal(t, "B00TEST001", entry.ASIN)

	assert.Len(t, r.SKUs(), 1)
}

func TestResolveUnknownSKU(t *testing.T) {
	r := NewResolver(nil, nil)
	_, ok := r.Resolve("MK-404")
	assert.False(t, ok)
}

func TestAsinToSKU(t *testing.T) {
	lookup := AsinToSKU([]MappingRow{
		{SKU: "MK-100", ASIN: "B00TEST001"},
		{SKU: "MK-100-LOC", ASIN: "B00TEST001-LOC"},
		{SKU: "MK-200", ASIN: "B00TEST002"},
		{SKU: "MK-999", ASIN: "B00TEST001"}, // same ASIN, first wins
		{SKU: "", ASIN: "B00TEST003"},
		{SKU: "MK-300", ASIN: ""},
	})

	assert.Equal(t, map[string]string{
		"B00TEST001": "MK-100",
		"B00TEST002": "MK-200",
	}, lookup)
}
