package v1

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/catalogs/warehouse"
	"stockroom/internal/domain/rollup"
	"stockroom/internal/domain/stock"
)

// The catalog services and the ledger/rollup live in separate packages; the
// small interfaces the ledger and rollup consume are satisfied here so the
// domain packages stay decoupled.

var (
	_ stock.ProductCatalog   = (*productCatalog)(nil)
	_ rollup.ProductLookup   = (*productLookup)(nil)
	_ rollup.WarehouseLookup = (*warehouseLookup)(nil)
)

// productCatalog exposes declared variant names to the provisioning policy.
type productCatalog struct {
	products *product.Service
}

func (a *productCatalog) DeclaredVariants(ctx context.Context, productID id.ID) ([]string, error) {
	p, err := a.products.GetActive(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.VariantNames(), nil
}

// productLookup exposes display data to the rollup. Soft-deleted products
// surface as not found, which the rollup maps to fallback display data.
type productLookup struct {
	products *product.Service
}

func (a *productLookup) GetDisplay(ctx context.Context, productID id.ID) (rollup.ProductDisplay, error) {
	p, err := a.products.GetActive(ctx, productID)
	if err != nil {
		return rollup.ProductDisplay{}, err
	}

	display := rollup.ProductDisplay{
		Title:        p.Name,
		VariantNames: p.VariantNames(),
	}
	if p.Thumbnail != nil {
		display.Thumbnail = *p.Thumbnail
	}

	return display, nil
}

// warehouseLookup exposes warehouse names to the rollup.
type warehouseLookup struct {
	warehouses *warehouse.Service
}

func (a *warehouseLookup) GetName(ctx context.Context, warehouseID id.ID) (string, error) {
	w, err := a.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return "", err
	}
	if w.DeletionMark {
		return "", apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return w.Name, nil
}
