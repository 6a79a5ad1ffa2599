package amazon

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// RestockSource reads a Seller Central restock inventory export from disk and
// implements the inventory feed. Exports arrive as CSV or TSV depending on
// how the report was generated, sometimes with a UTF-8 BOM.
type RestockSource struct {
	Path string
}

// NewRestockSource creates a source over a downloaded restock export.
func NewRestockSource(path string) *RestockSource {
	return &RestockSource{Path: path}
}

var restockRequiredCols = []string{"Merchant SKU", "Available", "FC transfer", "FC Processing", "Inbound"}

// Fetch parses the export into raw per-SKU snapshot rows. Rows repeating a
// SKU are returned as-is; consolidation belongs to the normalizer.
func (s *RestockSource) Fetch(ctx context.Context) ([]domain.InventorySnapshot, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open restock export %s: %w", s.Path, err)
	}
	defer f.Close()

	return ParseRestock(f)
}

// ParseRestock parses a restock export from a reader.
func ParseRestock(r io.Reader) ([]domain.InventorySnapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read restock export: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read restock header: %w", err)
	}

	colIndex := func(name string) int {
		want := normalizeHeader(name)
		for i, h := range header {
			if normalizeHeader(h) == want {
				return i
			}
		}
		return -1
	}

	for _, col := range restockRequiredCols {
		if colIndex(col) < 0 {
			return nil, fmt.Errorf("restock export missing required column %q (found: %s)",
				col, strings.Join(header, ", "))
		}
	}

	idxSKU := colIndex("Merchant SKU")
	idxAvailable := colIndex("Available")
	idxFCTransfer := colIndex("FC transfer")
	idxFCProcessing := colIndex("FC Processing")
	idxInbound := colIndex("Inbound")
	idxWorking := colIndex("Working")
	idxShipped := colIndex("Shipped")
	idxReceiving := colIndex("Receiving")

	var rows []domain.InventorySnapshot
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read restock record: %w", err)
		}

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		parseInt := func(idx int) int {
			v := get(idx)
			if v == "" {
				return 0
			}
			v = strings.ReplaceAll(v, ",", "")
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				log.Debug().Str("value", v).Msg("restock: non-numeric quantity treated as zero")
				return 0
			}
			return int(f)
		}

		sku := get(idxSKU)
		if sku == "" {
			continue
		}

		rows = append(rows, domain.InventorySnapshot{
			SKU:          sku,
			Available:    parseInt(idxAvailable),
			FCTransfer:   parseInt(idxFCTransfer),
			FCProcessing: parseInt(idxFCProcessing),
			Inbound:      parseInt(idxInbound),
			Working:      parseInt(idxWorking),
			Shipped:      parseInt(idxShipped),
			Receiving:    parseInt(idxReceiving),
		})
	}

	return rows, nil
}

// detectDelimiter picks tab when the first non-empty lines contain at least
// as many tabs as commas, otherwise comma.
func detectDelimiter(raw []byte) rune {
	var sample []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == 5 {
			break
		}
	}
	joined := strings.Join(sample, "\n")
	if tabs := strings.Count(joined, "\t"); tabs > 0 && tabs >= strings.Count(joined, ",") {
		return '\t'
	}
	return ','
}

var headerSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeHeader(name string) string {
	return headerSanitizer.Replace(strings.TrimSpace(strings.ToLower(name)))
}
