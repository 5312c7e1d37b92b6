package rollup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/rollup"
	"stockroom/internal/domain/stock"
)

type recordsStub struct {
	records []*stock.StockRecord
}

func (s *recordsStub) Find(ctx context.Context, filter stock.Filter) ([]*stock.StockRecord, error) {
	if len(filter.ProductIDs) == 0 {
		return s.records, nil
	}
	wanted := make(map[id.ID]bool, len(filter.ProductIDs))
	for _, pid := range filter.ProductIDs {
		wanted[pid] = true
	}
	var out []*stock.StockRecord
	for _, r := range s.records {
		if wanted[r.ProductID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type productsStub struct {
	displays map[id.ID]rollup.ProductDisplay
}

func (s *productsStub) GetDisplay(ctx context.Context, productID id.ID) (rollup.ProductDisplay, error) {
	display, ok := s.displays[productID]
	if !ok {
		return rollup.ProductDisplay{}, apperror.NewNotFound("product", productID.String())
	}
	return display, nil
}

type warehousesStub struct {
	names map[id.ID]string
}

func (s *warehousesStub) GetName(ctx context.Context, warehouseID id.ID) (string, error) {
	name, ok := s.names[warehouseID]
	if !ok {
		return "", apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return name, nil
}

func mustRecord(t *testing.T, productID id.ID, variant stock.Variant, warehouseID id.ID, quantity, reorderPoint int64) *stock.StockRecord {
	t.Helper()
	r, err := stock.NewStockRecord(productID, variant, warehouseID, quantity, reorderPoint)
	require.NoError(t, err)
	return r
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	productID := id.New()
	warehouseA := id.New()
	warehouseB := id.New()

	records := &recordsStub{records: []*stock.StockRecord{
		mustRecord(t, productID, stock.NamedVariant("Small"), warehouseA, 3, 5),
		mustRecord(t, productID, stock.NamedVariant("Small"), warehouseB, 0, 2),
		mustRecord(t, productID, stock.NamedVariant("Large"), warehouseA, 20, 5),
	}}
	products := &productsStub{displays: map[id.ID]rollup.ProductDisplay{
		productID: {Title: "T-Shirt", Thumbnail: "https://cdn/img.png", VariantNames: []string{"Small", "Large"}},
	}}
	warehouses := &warehousesStub{names: map[id.ID]string{
		warehouseA: "Central",
		warehouseB: "East",
	}}

	service := rollup.NewService(records, products, warehouses)

	summary, err := service.Summarize(ctx, rollup.Filter{})
	require.NoError(t, err)
	require.Len(t, summary.Products, 1)

	p := summary.Products[0]
	assert.Equal(t, "T-Shirt", p.Title)
	assert.Equal(t, "https://cdn/img.png", p.Thumbnail)
	assert.Equal(t, int64(23), p.TotalStock)
	assert.Equal(t, 2, p.VariantCount)
	assert.Equal(t, 2, p.WarehouseCount)
	assert.True(t, p.HasLowStock)
	assert.True(t, p.HasOutOfStock)

	require.Len(t, p.Variants, 2)

	small := p.Variants[0]
	assert.Equal(t, "Small", small.VariantName.Name())
	assert.Equal(t, int64(3), small.TotalStock)
	assert.True(t, small.HasLowStock)
	assert.True(t, small.HasOutOfStock)
	require.Len(t, small.Warehouses, 2)
	assert.Equal(t, "Central", small.Warehouses[0].WarehouseName)
	assert.True(t, small.Warehouses[0].IsLowStock)
	assert.True(t, small.Warehouses[1].IsOutOfStock)

	large := p.Variants[1]
	assert.Equal(t, "Large", large.VariantName.Name())
	assert.Equal(t, int64(20), large.TotalStock)
	assert.False(t, large.HasLowStock)
	assert.False(t, large.HasOutOfStock)

	// product counts once toward each flag it carries
	assert.Equal(t, rollup.Stats{TotalProducts: 1, LowStockCount: 1, OutOfStockCount: 1}, summary.Stats)
}

func TestSummarize_Idempotent(t *testing.T) {
	ctx := context.Background()

	productID := id.New()
	warehouseID := id.New()

	records := &recordsStub{records: []*stock.StockRecord{
		mustRecord(t, productID, stock.BaseVariant(), warehouseID, 7, 3),
	}}
	products := &productsStub{displays: map[id.ID]rollup.ProductDisplay{
		productID: {Title: "Mug"},
	}}
	warehouses := &warehousesStub{names: map[id.ID]string{warehouseID: "Central"}}

	service := rollup.NewService(records, products, warehouses)

	first, err := service.Summarize(ctx, rollup.Filter{})
	require.NoError(t, err)
	second, err := service.Summarize(ctx, rollup.Filter{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummarize_MissingCatalogRows(t *testing.T) {
	ctx := context.Background()

	productID := id.New()
	warehouseID := id.New()

	records := &recordsStub{records: []*stock.StockRecord{
		mustRecord(t, productID, stock.BaseVariant(), warehouseID, 4, 1),
	}}
	// catalog knows neither the product nor the warehouse
	service := rollup.NewService(records,
		&productsStub{displays: map[id.ID]rollup.ProductDisplay{}},
		&warehousesStub{names: map[id.ID]string{}},
	)

	summary, err := service.Summarize(ctx, rollup.Filter{})
	require.NoError(t, err)
	require.Len(t, summary.Products, 1)

	p := summary.Products[0]
	assert.Equal(t, "Unknown product", p.Title)
	assert.Empty(t, p.Thumbnail)
	require.Len(t, p.Variants, 1)
	require.Len(t, p.Variants[0].Warehouses, 1)
	assert.Equal(t, "Unknown warehouse", p.Variants[0].Warehouses[0].WarehouseName)

	// the ledger row still counts
	assert.Equal(t, int64(4), p.TotalStock)
	assert.Equal(t, 1, summary.Stats.TotalProducts)
}

func TestSummarize_VariantOrdering(t *testing.T) {
	ctx := context.Background()

	productID := id.New()
	warehouseID := id.New()

	// records arrive in discovery order: Large, Legacy, Small
	records := &recordsStub{records: []*stock.StockRecord{
		mustRecord(t, productID, stock.NamedVariant("Large"), warehouseID, 1, 0),
		mustRecord(t, productID, stock.NamedVariant("Legacy"), warehouseID, 1, 0),
		mustRecord(t, productID, stock.NamedVariant("Small"), warehouseID, 1, 0),
	}}
	// catalog declares Small before Large and no longer knows Legacy
	products := &productsStub{displays: map[id.ID]rollup.ProductDisplay{
		productID: {Title: "T-Shirt", VariantNames: []string{"Small", "Large"}},
	}}
	warehouses := &warehousesStub{names: map[id.ID]string{warehouseID: "Central"}}

	summary, err := rollup.NewService(records, products, warehouses).Summarize(ctx, rollup.Filter{})
	require.NoError(t, err)
	require.Len(t, summary.Products, 1)

	names := make([]string, 0, 3)
	for _, v := range summary.Products[0].Variants {
		names = append(names, v.VariantName.Name())
	}
	assert.Equal(t, []string{"Small", "Large", "Legacy"}, names)
}

func TestSummarize_Filter(t *testing.T) {
	ctx := context.Background()

	productA := id.New()
	productB := id.New()
	warehouseID := id.New()

	records := &recordsStub{records: []*stock.StockRecord{
		mustRecord(t, productA, stock.BaseVariant(), warehouseID, 1, 0),
		mustRecord(t, productB, stock.BaseVariant(), warehouseID, 0, 0),
	}}
	products := &productsStub{displays: map[id.ID]rollup.ProductDisplay{
		productA: {Title: "A"},
		productB: {Title: "B"},
	}}
	warehouses := &warehousesStub{names: map[id.ID]string{warehouseID: "Central"}}

	service := rollup.NewService(records, products, warehouses)

	summary, err := service.Summarize(ctx, rollup.Filter{ProductIDs: []id.ID{productB}})
	require.NoError(t, err)
	require.Len(t, summary.Products, 1)
	assert.Equal(t, "B", summary.Products[0].Title)
	assert.Equal(t, rollup.Stats{TotalProducts: 1, LowStockCount: 0, OutOfStockCount: 1}, summary.Stats)
}

func TestSummarize_Empty(t *testing.T) {
	service := rollup.NewService(&recordsStub{}, &productsStub{}, &warehousesStub{})

	summary, err := service.Summarize(context.Background(), rollup.Filter{})
	require.NoError(t, err)
	assert.Empty(t, summary.Products)
	assert.Equal(t, rollup.Stats{}, summary.Stats)
}
