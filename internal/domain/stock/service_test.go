package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/storage/memory"
)

// catalogStub serves declared variant names per product.
type catalogStub struct {
	variants map[id.ID][]string
}

func (c *catalogStub) DeclaredVariants(ctx context.Context, productID id.ID) ([]string, error) {
	names, ok := c.variants[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return names, nil
}

type fixture struct {
	service *stock.Service
	repo    *memory.StockRepo
	catalog *catalogStub
}

func newFixture() *fixture {
	repo := memory.NewStockRepo()
	catalog := &catalogStub{variants: map[id.ID][]string{}}
	service := stock.NewService(repo, memory.NewTxManager(), catalog, nil)
	return &fixture{service: service, repo: repo, catalog: catalog}
}

// seedRecord creates one record directly in the repository.
func (f *fixture) seedRecord(t *testing.T, quantity, reorderPoint int64) *stock.StockRecord {
	t.Helper()
	record, err := stock.NewStockRecord(id.New(), stock.BaseVariant(), id.New(), quantity, reorderPoint)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), record))
	return record
}

func TestQuickAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("add increases quantity and writes audit entry", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 10, 5)

		got, err := f.service.QuickAdjust(ctx, record.ID, stock.OpAdd, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(17), got.Quantity)

		entries, err := f.repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(7), entries[0].Delta)
		assert.Equal(t, int64(17), entries[0].ResultingQuantity)
		assert.Equal(t, "add", entries[0].Reason)
	})

	t.Run("deduct decreases quantity", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 10, 5)

		got, err := f.service.QuickAdjust(ctx, record.ID, stock.OpDeduct, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.Quantity)
		assert.True(t, got.IsOutOfStock())
	})

	t.Run("deduct past zero is rejected without partial application", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 3, 0)

		_, err := f.service.QuickAdjust(ctx, record.ID, stock.OpDeduct, 4)
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))

		// quantity untouched, no audit entry
		after, err := f.repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), after.Quantity)

		entries, err := f.repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("insufficient stock error carries both quantities", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 3, 0)

		_, err := f.service.QuickAdjust(ctx, record.ID, stock.OpDeduct, 10)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, int64(10), appErr.Details["requested"])
		assert.Equal(t, int64(3), appErr.Details["available"])
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 10, 5)

		tests := []struct {
			name   string
			op     stock.Op
			amount int64
		}{
			{"unknown op", stock.Op("transfer"), 1},
			{"zero amount", stock.OpAdd, 0},
			{"negative amount", stock.OpDeduct, -5},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.service.QuickAdjust(ctx, record.ID, tt.op, tt.amount)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
			})
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.QuickAdjust(ctx, id.New(), stock.OpAdd, 1)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestAdjustWithReason(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts and records the reason", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 10, 5)

		got, err := f.service.AdjustWithReason(ctx, record.ID, 4, "damaged in transit")
		require.NoError(t, err)
		assert.Equal(t, int64(6), got.Quantity)

		entries, err := f.repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(-4), entries[0].Delta)
		assert.Equal(t, "damaged in transit", entries[0].Reason)
	})

	t.Run("blank reason is rejected before any read", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 10, 5)

		for _, reason := range []string{"", "   ", "\t\n"} {
			_, err := f.service.AdjustWithReason(ctx, record.ID, 1, reason)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		}

		after, err := f.repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), after.Quantity)
	})

	t.Run("never adds stock", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 10, 5)

		_, err := f.service.AdjustWithReason(ctx, record.ID, -3, "trying to sneak an add")
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestAdjust_Concurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("N deductions of 1 against quantity N all succeed", func(t *testing.T) {
		const n = 50

		f := newFixture()
		record := f.seedRecord(t, n, 0)

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.QuickAdjust(ctx, record.ID, stock.OpDeduct, 1)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		after, err := f.repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), after.Quantity)

		entries, err := f.repo.EntriesByRecord(ctx, record.ID, stock.EntryListOptions{})
		require.NoError(t, err)
		assert.Len(t, entries, n)
	})

	t.Run("N+1 deductions leave exactly one rejected", func(t *testing.T) {
		const n = 20

		f := newFixture()
		record := f.seedRecord(t, n, 0)

		var wg sync.WaitGroup
		errs := make(chan error, n+1)
		for i := 0; i < n+1; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.QuickAdjust(ctx, record.ID, stock.OpDeduct, 1)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		rejected := 0
		for err := range errs {
			if err != nil {
				require.True(t, apperror.IsInsufficientStock(err))
				rejected++
			}
		}
		assert.Equal(t, 1, rejected)

		after, err := f.repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), after.Quantity)
	})
}

func TestProvision(t *testing.T) {
	ctx := context.Background()

	t.Run("variant product gets one record per declared variant", func(t *testing.T) {
		f := newFixture()
		productID := id.New()
		warehouseID := id.New()
		f.catalog.variants[productID] = []string{"Small", "Large"}

		records, err := f.service.Provision(ctx, productID, warehouseID, []stock.ProvisionEntry{
			{Variant: stock.NamedVariant("Small"), Quantity: 5, ReorderPoint: 2},
			{Variant: stock.NamedVariant("Large"), Quantity: 0, ReorderPoint: 1},
		})
		require.NoError(t, err)
		require.Len(t, records, 2)

		stored, err := f.repo.Find(ctx, stock.Filter{ProductID: &productID})
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("variant-less product gets exactly one base record", func(t *testing.T) {
		f := newFixture()
		productID := id.New()
		f.catalog.variants[productID] = nil

		records, err := f.service.Provision(ctx, productID, id.New(), []stock.ProvisionEntry{
			{Variant: stock.BaseVariant(), Quantity: 9},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Variant.IsBase())
	})

	t.Run("policy violations", func(t *testing.T) {
		f := newFixture()
		variantProduct := id.New()
		plainProduct := id.New()
		f.catalog.variants[variantProduct] = []string{"Small", "Large"}
		f.catalog.variants[plainProduct] = nil

		tests := []struct {
			name      string
			productID id.ID
			entries   []stock.ProvisionEntry
		}{
			{"no entries", plainProduct, nil},
			{"base entry for variant product", variantProduct, []stock.ProvisionEntry{
				{Variant: stock.BaseVariant()},
			}},
			{"missing declared variant", variantProduct, []stock.ProvisionEntry{
				{Variant: stock.NamedVariant("Small")},
			}},
			{"undeclared variant", variantProduct, []stock.ProvisionEntry{
				{Variant: stock.NamedVariant("Small")},
				{Variant: stock.NamedVariant("Medium")},
			}},
			{"duplicate variant", variantProduct, []stock.ProvisionEntry{
				{Variant: stock.NamedVariant("Small")},
				{Variant: stock.NamedVariant("Small")},
			}},
			{"named entry for variant-less product", plainProduct, []stock.ProvisionEntry{
				{Variant: stock.NamedVariant("Small")},
			}},
			{"extra base entry", plainProduct, []stock.ProvisionEntry{
				{Variant: stock.BaseVariant()},
				{Variant: stock.BaseVariant()},
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.service.Provision(ctx, tt.productID, id.New(), tt.entries)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
			})
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Provision(ctx, id.New(), id.New(), []stock.ProvisionEntry{
			{Variant: stock.BaseVariant()},
		})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("key collision fails the whole batch", func(t *testing.T) {
		f := newFixture()
		productID := id.New()
		warehouseID := id.New()
		f.catalog.variants[productID] = []string{"Small", "Large", "XL"}

		// Pre-existing record collides with the second entry of the batch.
		existing, err := stock.NewStockRecord(productID, stock.NamedVariant("Large"), warehouseID, 1, 0)
		require.NoError(t, err)
		require.NoError(t, f.repo.Create(ctx, existing))

		_, err = f.service.Provision(ctx, productID, warehouseID, []stock.ProvisionEntry{
			{Variant: stock.NamedVariant("Small"), Quantity: 5},
			{Variant: stock.NamedVariant("Large"), Quantity: 5},
			{Variant: stock.NamedVariant("XL"), Quantity: 5},
		})
		require.Error(t, err)
		assert.True(t, apperror.IsDuplicate(err))

		// only the pre-existing record remains
		stored, err := f.repo.Find(ctx, stock.Filter{ProductID: &productID})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, existing.ID, stored[0].ID)
	})
}

func TestEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("newest first with pagination", func(t *testing.T) {
		f := newFixture()
		record := f.seedRecord(t, 100, 0)

		for i := 0; i < 5; i++ {
			_, err := f.service.QuickAdjust(ctx, record.ID, stock.OpDeduct, 1)
			require.NoError(t, err)
		}

		entries, err := f.service.Entries(ctx, record.ID, stock.EntryListOptions{Limit: 3})
		require.NoError(t, err)
		require.Len(t, entries, 3)

		// newest first: resulting quantities descend from the latest
		assert.Equal(t, int64(95), entries[0].ResultingQuantity)
	})

	t.Run("unknown record", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Entries(ctx, id.New(), stock.EntryListOptions{})
		assert.True(t, apperror.IsNotFound(err))
	})
}
