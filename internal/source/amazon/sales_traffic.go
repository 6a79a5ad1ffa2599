package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/andresuchdata/fba-weekly-summary/internal/cache"
	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// AsinSales is one parsed report row: units ordered for a child ASIN under a
// specific Amazon merchant SKU. The merchant SKU is used only to detect -LOC
// listing variants, never for naming.
type AsinSales struct {
	ChildAsin string `json:"child_asin"`
	AmazonSKU string `json:"amazon_sku"`
	Units     int    `json:"units"`
}

type salesTrafficPayload struct {
	SalesAndTrafficByAsin []struct {
		ChildAsin   string          `json:"childAsin"`
		SKU         string          `json:"sku"`
		SalesBySku  *salesContainer `json:"salesBySku"`
		SalesByAsin *salesContainer `json:"salesByAsin"`
	} `json:"salesAndTrafficByAsin"`
}

type salesContainer struct {
	UnitsOrdered *float64 `json:"unitsOrdered"`
}

// parseSalesTraffic decodes a downloaded report document. An empty
// salesAndTrafficByAsin list is valid: Amazon returns no rows for the most
// recent day while its own aggregation lags.
func parseSalesTraffic(raw []byte) ([]AsinSales, error) {
	var payload salesTrafficPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		preview := raw
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("spapi: report document is not valid JSON (preview %q): %w", string(preview), err)
	}

	out := make([]AsinSales, 0, len(payload.SalesAndTrafficByAsin))
	for _, row := range payload.SalesAndTrafficByAsin {
		asin := strings.TrimSpace(row.ChildAsin)
		sku := strings.TrimSpace(row.SKU)
		if asin == "" || sku == "" {
			continue
		}

		units := 0.0
		switch {
		case row.SalesBySku != nil && row.SalesBySku.UnitsOrdered != nil:
			units = *row.SalesBySku.UnitsOrdered
		case row.SalesByAsin != nil && row.SalesByAsin.UnitsOrdered != nil:
			units = *row.SalesByAsin.UnitsOrdered
		}

		out = append(out, AsinSales{ChildAsin: asin, AmazonSKU: sku, Units: int(units)})
	}
	return out, nil
}

// SalesTrafficSource implements the daily sales feed on top of the SP-API
// sales-and-traffic report: one report per calendar day, pulled with bounded
// concurrency and cached between runs. ASIN-grain rows are fanned out to SKU
// grain through the reference mapping before the core ever sees them.
type SalesTrafficSource struct {
	client        *Client
	cache         cache.ReportCache
	marketplaceID string
	asinToSKU     map[string]string
	sem           *semaphore.Weighted
}

// NewSalesTrafficSource wires the source. asinToSKU comes from the reference
// mapping sheet (see reference.AsinToSKU); maxConcurrent bounds in-flight
// report requests.
func NewSalesTrafficSource(client *Client, reportCache cache.ReportCache, marketplaceID string, asinToSKU map[string]string, maxConcurrent int) *SalesTrafficSource {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if reportCache == nil {
		reportCache = cache.NewNoopReportCache()
	}
	return &SalesTrafficSource{
		client:        client,
		cache:         reportCache,
		marketplaceID: marketplaceID,
		asinToSKU:     asinToSKU,
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Fetch returns one row per (SKU, day) with non-zero units across the
// inclusive date range, ordered by date then SKU.
func (s *SalesTrafficSource) Fetch(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	var (
		mu  sync.Mutex
		out []domain.DailySales
	)

	g, gctx := errgroup.WithContext(ctx)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		day := day
		g.Go(func() error {
			if err := s.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer s.sem.Release(1)

			rows, err := s.fetchDay(gctx, day)
			if err != nil {
				return fmt.Errorf("sales traffic for %s: %w", day.Format("2006-01-02"), err)
			}

			daily := s.mapToSKU(day, rows)
			mu.Lock()
			out = append(out, daily...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (s *SalesTrafficSource) fetchDay(ctx context.Context, day time.Time) ([]AsinSales, error) {
	key := cache.Key(s.marketplaceID, day, day)

	var cached []AsinSales
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("spapi: report cache get failed, pulling fresh")
	} else if ok {
		return cached, nil
	}

	rows, err := s.client.SalesTraffic(ctx, s.marketplaceID, day, day)
	if err != nil {
		return nil, err
	}

	ttl := cache.TTLForWindow(day, time.Now())
	if err := s.cache.Set(ctx, key, rows, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("spapi: report cache set failed")
	}
	return rows, nil
}

// mapToSKU applies the ASIN->SKU mapping and the -LOC variant rule: a row
// whose merchant SKU ends in -LOC becomes a distinct "<sku>-LOC" output row.
// Unmapped ASINs are dropped; they have no home in the summary.
func (s *SalesTrafficSource) mapToSKU(day time.Time, rows []AsinSales) []domain.DailySales {
	units := make(map[string]int)
	for _, row := range rows {
		base, ok := s.asinToSKU[stripLoc(row.ChildAsin)]
		if !ok || row.Units == 0 {
			continue
		}
		sku := base
		if strings.HasSuffix(strings.ToUpper(row.AmazonSKU), "-LOC") {
			sku = base + "-LOC"
		}
		units[sku] += row.Units
	}

	out := make([]domain.DailySales, 0, len(units))
	for sku, u := range units {
		out = append(out, domain.DailySales{SKU: sku, Date: day, Units: u})
	}
	return out
}

func stripLoc(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(strings.ToLower(s), "-loc") {
		return s[:len(s)-4]
	}
	return s
}
