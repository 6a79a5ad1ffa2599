package amazon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalesTraffic(t *testing.T) {
	raw := []byte(`{
		"salesAndTrafficByAsin": [
			{"childAsin": "B001", "sku": "MK-100", "salesBySku": {"unitsOrdered": 5}},
			{"childAsin": "B002", "sku": "MK-200", "salesByAsin": {"unitsOrdered": 3}},
			{"childAsin": "B003", "sku": "MK-300", "salesBySku": {"unitsOrdered": 2}, "salesByAsin": {"unitsOrdered": 99}},
			{"childAsin": "", "sku": "MK-400", "salesBySku": {"unitsOrdered": 7}},
			{"childAsin": "B005", "sku": "", "salesBySku": {"unitsOrdered": 7}}
		]
	}`)

	rows, err := parseSalesTraffic(raw)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, AsinSales{ChildAsin: "B001", AmazonSKU: "MK-100", Units: 5}, rows[0])
	assert.Equal(t, 3, rows[1].Units, "salesByAsin is the fallback")
	assert.Equal(t, 2, rows[2].Units, "salesBySku wins when both present")
}

func TestParseSalesTrafficEmptyListIsValid(t *testing.T) {
	rows, err := parseSalesTraffic([]byte(`{"salesAndTrafficByAsin": []}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseSalesTrafficInvalidJSON(t *testing.T) {
	_, err := parseSalesTraffic([]byte("<html>rate limited</html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestMapToSKU(t *testing.T) {
	src := NewSalesTrafficSource(nil, nil, "ATVPDKIKX0DER", map[string]string{
		"B001": "MK-100",
		"B002": "MK-200",
	}, 2)

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	out := src.mapToSKU(day, []AsinSales{
		{ChildAsin: "B001", AmazonSKU: "AMZ-MK-100", Units: 4},
		{ChildAsin: "B001", AmazonSKU: "AMZ-MK-100-LOC", Units: 2},
		{ChildAsin: "B002", AmazonSKU: "AMZ-MK-200", Units: 0},   // zero dropped
		{ChildAsin: "B999", AmazonSKU: "AMZ-UNKNOWN", Units: 10}, // unmapped dropped
	})

	byKey := make(map[string]int, len(out))
	for _, row := range out {
		assert.Equal(t, day, row.Date)
		byKey[row.SKU] = row.Units
	}

	assert.Equal(t, map[string]int{
		"MK-100":     4,
		"MK-100-LOC": 2,
	}, byKey)
}

func TestMapToSKUAggregatesRepeatedRows(t *testing.T) {
	src := NewSalesTrafficSource(nil, nil, "ATVPDKIKX0DER", map[string]string{"B001": "MK-100"}, 1)

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	out := src.mapToSKU(day, []AsinSales{
		{ChildAsin: "B001", AmazonSKU: "A", Units: 2},
		{ChildAsin: "B001", AmazonSKU: "B", Units: 3},
	})

	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Units)
}

func TestStripLoc(t *testing.T) {
	assert.Equal(t, "B001", stripLoc("B001-LOC"))
	assert.Equal(t, "B001", stripLoc(" B001-loc "))
	assert.Equal(t, "B001", stripLoc("B001"))
	assert.Equal(t, "LOCKER", stripLoc("LOCKER"))
}
