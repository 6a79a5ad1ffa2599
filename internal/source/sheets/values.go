package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one sheet row with cells addressable by (cleaned) header name.
type Row map[string]string

// ValuesToRows converts a Sheets API values range into header-keyed rows.
// Human-maintained sheets are messy: leading blank rows before the header,
// blank header cells, headers with trailing colons ("Mini SKU:"), and short
// data rows all occur and are tolerated.
func ValuesToRows(values [][]interface{}) ([]Row, error) {
	// Drop leading empty rows so header parsing doesn't fail.
	for len(values) > 0 && rowEmpty(values[0]) {
		values = values[1:]
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("sheet range has no header row")
	}

	header := values[0]
	type column struct {
		idx  int
		name string
	}
	var columns []column
	for i, cell := range header {
		name := cleanHeader(toString(cell))
		if name == "" {
			continue
		}
		columns = append(columns, column{idx: i, name: name})
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("sheet header row has no usable column names")
	}

	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		if rowEmpty(raw) {
			continue
		}
		row := make(Row, len(columns))
		for _, col := range columns {
			if col.idx < len(raw) {
				row[col.name] = strings.TrimSpace(toString(raw[col.idx]))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Money parses a money-like cell ("$1,234.56", "12.00", "") into a float.
// Blanks and unparseable values become zero.
func (r Row) Money(name string) float64 {
	v := strings.TrimSpace(r[name])
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, "$", "")
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// Int parses an integer-ish cell, tolerating float formatting like "12.0".
func (r Row) Int(name string) (int, bool) {
	v := strings.TrimSpace(r[name])
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// cleanHeader trims whitespace and a trailing colon from a header cell.
func cleanHeader(name string) string {
	return strings.TrimRight(strings.TrimSpace(name), ":")
}

func rowEmpty(row []interface{}) bool {
	for _, cell := range row {
		if strings.TrimSpace(toString(cell)) != "" {
			return false
		}
	}
	return true
}

func toString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
