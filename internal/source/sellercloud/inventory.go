package sellercloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const maxPageSize = 50

type inventoryItem struct {
	InventoryAvailableQty int    `json:"InventoryAvailableQty"`
	ShadowOf              string `json:"ShadowOf"`
	ManufacturerSKU       string `json:"ManufacturerSKU"`
}

type inventoryPage struct {
	Items []inventoryItem `json:"Items"`
}

// WarehouseInventorySource pages through a SellerCloud saved inventory view
// and reduces it to per-SKU available quantities.
type WarehouseInventorySource struct {
	client   *Client
	viewID   int
	pageSize int
}

func NewWarehouseInventorySource(client *Client, viewID, pageSize int) *WarehouseInventorySource {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &WarehouseInventorySource{client: client, viewID: viewID, pageSize: pageSize}
}

// Fetch walks the view page by page until a short page. Shadow products carry
// the canonical SKU in ShadowOf, so it wins over ManufacturerSKU. Rows with no
// stock are dropped, and a SKU appearing more than once keeps its largest
// quantity.
func (s *WarehouseInventorySource) Fetch(ctx context.Context) (map[string]int, error) {
	quantities := make(map[string]int)

	for page := 1; ; page++ {
		path := fmt.Sprintf("/Inventory/GetAllByView?viewID=%d&pageNumber=%d&pageSize=%d", s.viewID, page, s.pageSize)

		var body inventoryPage
		if err := s.client.getJSON(ctx, path, &body); err != nil {
			return nil, err
		}

		for _, item := range body.Items {
			sku := strings.TrimSpace(item.ShadowOf)
			if sku == "" {
				sku = strings.TrimSpace(item.ManufacturerSKU)
			}
			if sku == "" || item.InventoryAvailableQty <= 0 {
				continue
			}
			if item.InventoryAvailableQty > quantities[sku] {
				quantities[sku] = item.InventoryAvailableQty
			}
		}

		if len(body.Items) < s.pageSize {
			break
		}
	}

	log.Info().
		Int("view_id", s.viewID).
		Int("skus", len(quantities)).
		Msg("sellercloud: warehouse inventory fetched")
	return quantities, nil
}
