// Package rollup provides the read-side projection of the stock ledger:
// per-product summaries grouped product -> variant -> warehouse, plus the
// global dashboard counters. It owns no state; every summary is computed
// from the current records.
package rollup

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
)

// WarehouseStock is one ledger row as it appears on the dashboard.
type WarehouseStock struct {
	StockID       id.ID  `json:"stockId"`
	WarehouseID   id.ID  `json:"warehouseId"`
	WarehouseName string `json:"warehouseName"`
	Quantity      int64  `json:"quantity"`
	ReorderPoint  int64  `json:"reorderPoint"`
	IsLowStock    bool   `json:"isLowStock"`
	IsOutOfStock  bool   `json:"isOutOfStock"`
}

// VariantStock groups a product's rows for one variant.
type VariantStock struct {
	VariantName   stock.Variant    `json:"variantName"`
	TotalStock    int64            `json:"totalStock"`
	HasLowStock   bool             `json:"hasLowStock"`
	HasOutOfStock bool             `json:"hasOutOfStock"`
	Warehouses    []WarehouseStock `json:"warehouses"`
}

// ProductStockSummary is the per-product rollup. It is a transient view:
// callers must never persist it as if authoritative.
type ProductStockSummary struct {
	ProductID      id.ID          `json:"productId"`
	Title          string         `json:"title"`
	Thumbnail      string         `json:"thumbnail,omitempty"`
	Variants       []VariantStock `json:"variants"`
	TotalStock     int64          `json:"totalStock"`
	VariantCount   int            `json:"variantCount"`
	WarehouseCount int            `json:"warehouseCount"`
	HasLowStock    bool           `json:"hasLowStock"`
	HasOutOfStock  bool           `json:"hasOutOfStock"`
}

// Stats are the global dashboard counters. Low/out-of-stock counts are per
// product, not per row: a product counts once toward each flag it carries.
type Stats struct {
	TotalProducts   int `json:"totalProducts"`
	LowStockCount   int `json:"lowStockCount"`
	OutOfStockCount int `json:"outOfStockCount"`
}

// Summary is the full rollup result.
type Summary struct {
	Products []ProductStockSummary `json:"products"`
	Stats    Stats                 `json:"stats"`
}

// Filter narrows the summary to a set of products.
type Filter struct {
	ProductIDs []id.ID
}

// Summarizer computes summaries. The cache decorator in infrastructure
// implements the same interface around Service.
type Summarizer interface {
	Summarize(ctx context.Context, filter Filter) (*Summary, error)
}

// ProductDisplay carries the catalog display data embedded in a summary.
type ProductDisplay struct {
	Title        string
	Thumbnail    string
	VariantNames []string
}

// ProductLookup supplies product display data. A not-found result is
// tolerated: the aggregator substitutes fallback data rather than failing.
type ProductLookup interface {
	GetDisplay(ctx context.Context, productID id.ID) (ProductDisplay, error)
}

// WarehouseLookup supplies warehouse titles, tolerated the same way.
type WarehouseLookup interface {
	GetName(ctx context.Context, warehouseID id.ID) (string, error)
}
