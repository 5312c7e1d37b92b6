package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/id"
	"stockroom/internal/domain/rollup"
	"stockroom/internal/domain/stock"
)

func TestCodec_Roundtrip(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)

	summary := &rollup.Summary{
		Products: []rollup.ProductStockSummary{
			{
				ProductID: id.New(),
				Title:     "T-Shirt",
				Variants: []rollup.VariantStock{
					{
						VariantName: stock.NamedVariant("Small"),
						TotalStock:  3,
						HasLowStock: true,
						Warehouses: []rollup.WarehouseStock{
							{StockID: id.New(), WarehouseID: id.New(), WarehouseName: "Central", Quantity: 3, ReorderPoint: 5, IsLowStock: true},
						},
					},
					{
						VariantName: stock.BaseVariant(),
						TotalStock:  0,
					},
				},
				TotalStock:     3,
				VariantCount:   2,
				WarehouseCount: 1,
				HasLowStock:    true,
			},
		},
		Stats: rollup.Stats{TotalProducts: 1, LowStockCount: 1},
	}

	data, err := codec.Encode(summary)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, summary, back)
}

func TestCodec_DecodeGarbage(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)

	_, err = codec.Decode([]byte("not zstd at all"))
	assert.Error(t, err)
}

func TestCodec_CompressesRepetitivePayloads(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)

	summary := &rollup.Summary{}
	for i := 0; i < 200; i++ {
		summary.Products = append(summary.Products, rollup.ProductStockSummary{
			ProductID: id.New(),
			Title:     "A very repetitive product title",
		})
	}

	data, err := codec.Encode(summary)
	require.NoError(t, err)

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Less(t, len(data), len(raw))
}
