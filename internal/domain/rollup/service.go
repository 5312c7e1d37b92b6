package rollup

import (
	"context"
	"fmt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
	"stockroom/pkg/logger"
)

// Fallback labels used when a catalog row has gone missing under a live
// ledger row. The summary degrades, it never disappears.
const (
	fallbackProductTitle  = "Unknown product"
	fallbackWarehouseName = "Unknown warehouse"
)

// Records is the slice of the ledger the aggregator reads.
type Records interface {
	Find(ctx context.Context, filter stock.Filter) ([]*stock.StockRecord, error)
}

// Service computes summaries from the current stock records. It holds no
// state and is safe to run concurrently with any number of adjustments; a
// summary is a point-in-time snapshot, not a transactional read.
type Service struct {
	records    Records
	products   ProductLookup
	warehouses WarehouseLookup
}

// NewService creates the rollup aggregator.
func NewService(records Records, products ProductLookup, warehouses WarehouseLookup) *Service {
	return &Service{
		records:    records,
		products:   products,
		warehouses: warehouses,
	}
}

var _ Summarizer = (*Service)(nil)

// Summarize groups the (optionally filtered) records by product, then by
// variant in the catalog's declared order (discovery order for variants the
// catalog no longer knows), then lists the warehouse rows per variant.
func (s *Service) Summarize(ctx context.Context, filter Filter) (*Summary, error) {
	records, err := s.records.Find(ctx, stock.Filter{ProductIDs: filter.ProductIDs})
	if err != nil {
		return nil, fmt.Errorf("find stock records: %w", err)
	}

	// Group records per product, preserving first-seen order.
	productOrder := make([]id.ID, 0)
	byProduct := make(map[id.ID][]*stock.StockRecord)
	for _, r := range records {
		if _, ok := byProduct[r.ProductID]; !ok {
			productOrder = append(productOrder, r.ProductID)
		}
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}

	warehouseNames := make(map[id.ID]string)
	summary := &Summary{Products: make([]ProductStockSummary, 0, len(productOrder))}

	for _, productID := range productOrder {
		product := s.summarizeProduct(ctx, productID, byProduct[productID], warehouseNames)
		summary.Products = append(summary.Products, product)

		summary.Stats.TotalProducts++
		if product.HasLowStock {
			summary.Stats.LowStockCount++
		}
		if product.HasOutOfStock {
			summary.Stats.OutOfStockCount++
		}
	}

	return summary, nil
}

// summarizeProduct builds one product's rollup from its records.
func (s *Service) summarizeProduct(ctx context.Context, productID id.ID, records []*stock.StockRecord, warehouseNames map[id.ID]string) ProductStockSummary {
	display := s.productDisplay(ctx, productID)

	// Declared variant order first, discovery order for the rest.
	variantRank := make(map[string]int, len(display.VariantNames))
	for i, name := range display.VariantNames {
		variantRank[name] = i
	}

	variantOrder := make([]string, 0)
	byVariant := make(map[string][]*stock.StockRecord)
	for _, r := range records {
		key := r.Variant.Name()
		if _, ok := byVariant[key]; !ok {
			variantOrder = append(variantOrder, key)
		}
		byVariant[key] = append(byVariant[key], r)
	}
	sortByDeclaredOrder(variantOrder, variantRank)

	product := ProductStockSummary{
		ProductID: productID,
		Title:     display.Title,
		Thumbnail: display.Thumbnail,
		Variants:  make([]VariantStock, 0, len(variantOrder)),
	}

	warehouses := make(map[id.ID]bool)
	for _, key := range variantOrder {
		group := byVariant[key]

		variant := VariantStock{
			VariantName: group[0].Variant,
			Warehouses:  make([]WarehouseStock, 0, len(group)),
		}
		for _, r := range group {
			row := WarehouseStock{
				StockID:       r.ID,
				WarehouseID:   r.WarehouseID,
				WarehouseName: s.warehouseName(ctx, r.WarehouseID, warehouseNames),
				Quantity:      r.Quantity,
				ReorderPoint:  r.ReorderPoint,
				IsLowStock:    r.IsLowStock(),
				IsOutOfStock:  r.IsOutOfStock(),
			}
			variant.Warehouses = append(variant.Warehouses, row)
			variant.TotalStock += row.Quantity
			variant.HasLowStock = variant.HasLowStock || row.IsLowStock
			variant.HasOutOfStock = variant.HasOutOfStock || row.IsOutOfStock

			warehouses[r.WarehouseID] = true
		}

		product.Variants = append(product.Variants, variant)
		product.TotalStock += variant.TotalStock
		product.HasLowStock = product.HasLowStock || variant.HasLowStock
		product.HasOutOfStock = product.HasOutOfStock || variant.HasOutOfStock
	}

	product.VariantCount = len(product.Variants)
	product.WarehouseCount = len(warehouses)

	return product
}

// productDisplay fetches catalog display data, degrading to a placeholder
// when the product has since been deleted. Partial catalog data is logged,
// never surfaced: one bad row must not abort the rollup.
func (s *Service) productDisplay(ctx context.Context, productID id.ID) ProductDisplay {
	display, err := s.products.GetDisplay(ctx, productID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			logger.Warn(ctx, "product lookup failed, using fallback display data",
				"product_id", productID,
				"error", err,
			)
		} else {
			logger.Warn(ctx, "product missing from catalog, using fallback display data",
				"product_id", productID,
			)
		}
		return ProductDisplay{Title: fallbackProductTitle}
	}
	return display
}

// warehouseName resolves a warehouse title with per-call memoization.
func (s *Service) warehouseName(ctx context.Context, warehouseID id.ID, cache map[id.ID]string) string {
	if name, ok := cache[warehouseID]; ok {
		return name
	}

	name, err := s.warehouses.GetName(ctx, warehouseID)
	if err != nil {
		logger.Warn(ctx, "warehouse lookup failed, using fallback name",
			"warehouse_id", warehouseID,
			"error", err,
		)
		name = fallbackWarehouseName
	}
	cache[warehouseID] = name
	return name
}

// sortByDeclaredOrder reorders variant keys so declared variants come first
// in catalog order; undeclared ones keep their discovery order after them.
func sortByDeclaredOrder(keys []string, rank map[string]int) {
	if len(rank) == 0 || len(keys) < 2 {
		return
	}

	declared := make([]string, 0, len(keys))
	discovered := make([]string, 0)
	for _, k := range keys {
		if _, ok := rank[k]; ok {
			declared = append(declared, k)
		} else {
			discovered = append(discovered, k)
		}
	}

	// Insertion sort by declared rank: variant lists are tiny.
	for i := 1; i < len(declared); i++ {
		for j := i; j > 0 && rank[declared[j]] < rank[declared[j-1]]; j-- {
			declared[j], declared[j-1] = declared[j-1], declared[j]
		}
	}

	copy(keys, declared)
	copy(keys[len(declared):], discovered)
}
