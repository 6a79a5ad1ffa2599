package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesToRows(t *testing.T) {
	values := [][]interface{}{
		{"SKU", "ASIN", "Mini SKU:", "", "Selling Price"},
		{"MK-100", "B001", "M100", "ignored", "$19.99"},
		{"MK-200", "B002"},
	}

	rows, err := ValuesToRows(values)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "MK-100", rows[0]["SKU"])
	assert.Equal(t, "M100", rows[0]["Mini SKU"], "trailing colon stripped")
	assert.Equal(t, "$19.99", rows[0]["Selling Price"])
	assert.Equal(t, "B002", rows[1]["ASIN"])
	assert.Equal(t, "", rows[1]["Selling Price"], "short rows padded with blanks")
}

func TestValuesToRowsSkipsLeadingBlankRows(t *testing.T) {
	values := [][]interface{}{
		{"", "", ""},
		{},
		{"SKU", "Qty"},
		{"MK-100", "4"},
		{"", ""},
		{"MK-200", "6"},
	}

	rows, err := ValuesToRows(values)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MK-100", rows[0]["SKU"])
	assert.Equal(t, "MK-200", rows[1]["SKU"])
}

func TestValuesToRowsNoHeader(t *testing.T) {
	_, err := ValuesToRows([][]interface{}{})
	assert.Error(t, err)

	_, err = ValuesToRows([][]interface{}{{"", ""}})
	assert.Error(t, err)
}

func TestValuesToRowsNonStringCells(t *testing.T) {
	values := [][]interface{}{
		{"SKU", "Qty"},
		{"MK-100", 12.0},
	}

	rows, err := ValuesToRows(values)
	require.NoError(t, err)
	assert.Equal(t, "12", rows[0]["Qty"])
}

func TestRowMoney(t *testing.T) {
	row := Row{
		"price": "$1,234.56",
		"plain": "12.00",
		"blank": "",
		"junk":  "TBD",
	}

	assert.Equal(t, 1234.56, row.Money("price"))
	assert.Equal(t, 12.0, row.Money("plain"))
	assert.Equal(t, 0.0, row.Money("blank"))
	assert.Equal(t, 0.0, row.Money("junk"))
	assert.Equal(t, 0.0, row.Money("missing"))
}

func TestRowInt(t *testing.T) {
	row := Row{
		"whole":   "12",
		"float":   "12.0",
		"grouped": "1,250",
		"blank":   "",
		"junk":    "a dozen",
	}

	v, ok := row.Int("whole")
	require.True(t, ok)
	assert.Equal(t, 12, v)

	v, ok = row.Int("float")
	require.True(t, ok)
	assert.Equal(t, 12, v)

	v, ok = row.Int("grouped")
	require.True(t, ok)
	assert.Equal(t, 1250, v)

	_, ok = row.Int("blank")
	assert.False(t, ok)

	_, ok = row.Int("junk")
	assert.False(t, ok)
}
