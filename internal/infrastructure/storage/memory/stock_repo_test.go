package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
)

func mustRecord(t *testing.T, productID id.ID, variant stock.Variant, warehouseID id.ID, quantity int64) *stock.StockRecord {
	t.Helper()
	r, err := stock.NewStockRecord(productID, variant, warehouseID, quantity, 0)
	require.NoError(t, err)
	return r
}

func TestStockRepo_KeyUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	productID := id.New()
	warehouseID := id.New()

	require.NoError(t, repo.Create(ctx, mustRecord(t, productID, stock.BaseVariant(), warehouseID, 1)))

	t.Run("same key is rejected", func(t *testing.T) {
		err := repo.Create(ctx, mustRecord(t, productID, stock.BaseVariant(), warehouseID, 2))
		assert.True(t, apperror.IsDuplicate(err))
	})

	t.Run("named variant is a different key than base", func(t *testing.T) {
		err := repo.Create(ctx, mustRecord(t, productID, stock.NamedVariant("Small"), warehouseID, 2))
		assert.NoError(t, err)
	})

	t.Run("different warehouse is a different key", func(t *testing.T) {
		err := repo.Create(ctx, mustRecord(t, productID, stock.BaseVariant(), id.New(), 2))
		assert.NoError(t, err)
	})
}

func TestStockRepo_CreateBatch_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	productID := id.New()
	warehouseID := id.New()

	existing := mustRecord(t, productID, stock.NamedVariant("Large"), warehouseID, 1)
	require.NoError(t, repo.Create(ctx, existing))

	err := repo.CreateBatch(ctx, []*stock.StockRecord{
		mustRecord(t, productID, stock.NamedVariant("Small"), warehouseID, 1),
		mustRecord(t, productID, stock.NamedVariant("Large"), warehouseID, 1), // collides
	})
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))

	records, err := repo.Find(ctx, stock.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStockRepo_CreateBatch_InternalCollision(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	productID := id.New()
	warehouseID := id.New()

	err := repo.CreateBatch(ctx, []*stock.StockRecord{
		mustRecord(t, productID, stock.NamedVariant("Small"), warehouseID, 1),
		mustRecord(t, productID, stock.NamedVariant("Small"), warehouseID, 1),
	})
	assert.True(t, apperror.IsDuplicate(err))

	records, err := repo.Find(ctx, stock.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStockRepo_Save_VersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	record := mustRecord(t, id.New(), stock.BaseVariant(), id.New(), 5)
	require.NoError(t, repo.Create(ctx, record))

	record.Quantity = 4
	require.NoError(t, repo.Save(ctx, record))
	assert.Equal(t, 2, record.Version)

	// a stale copy fails
	stale := *record
	stale.Version = 1
	err := repo.Save(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestStockRepo_CopyOnReturn(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	record := mustRecord(t, id.New(), stock.BaseVariant(), id.New(), 5)
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	got.Quantity = 999

	again, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.Quantity)
}

func TestStockRepo_Find_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	productA := id.New()
	productB := id.New()
	warehouse1 := id.New()
	warehouse2 := id.New()

	require.NoError(t, repo.Create(ctx, mustRecord(t, productA, stock.BaseVariant(), warehouse1, 1)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, productA, stock.BaseVariant(), warehouse2, 1)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, productB, stock.BaseVariant(), warehouse1, 1)))

	byProduct, err := repo.Find(ctx, stock.Filter{ProductID: &productA})
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	byWarehouse, err := repo.Find(ctx, stock.Filter{WarehouseID: &warehouse1})
	require.NoError(t, err)
	assert.Len(t, byWarehouse, 2)

	bySet, err := repo.Find(ctx, stock.Filter{ProductIDs: []id.ID{productB}})
	require.NoError(t, err)
	assert.Len(t, bySet, 1)

	all, err := repo.Find(ctx, stock.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStockRepo_Entries(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepo()

	record := mustRecord(t, id.New(), stock.BaseVariant(), id.New(), 10)
	require.NoError(t, repo.Create(ctx, record))

	for i := int64(1); i <= 4; i++ {
		require.NoError(t, repo.AppendEntry(ctx, stock.NewAdjustmentEntry(record.ID, -1, 10-i, "deduct")))
	}

	entries, err := repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, int64(6), entries[0].ResultingQuantity)

	page, err := repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(7), page[0].ResultingQuantity)

	past, err := repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}
