// Package stock provides the stock ledger: the records tracking on-hand
// quantity per (product, variant, warehouse) combination, and the adjustment
// engine that is the only legal path to mutate them.
package stock

import (
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
)

// State describes where a record's quantity sits relative to its reorder point.
// It is derived, never persisted.
type State string

const (
	StateOutOfStock State = "out_of_stock" // quantity == 0
	StateLowStock   State = "low_stock"    // 0 < quantity <= reorder point
	StateHealthy    State = "healthy"      // quantity > reorder point
)

// Op defines the direction of a quick adjustment.
type Op string

const (
	OpAdd    Op = "add"
	OpDeduct Op = "deduct"
)

// IsValid reports whether op is a known operation.
func (op Op) IsValid() bool {
	return op == OpAdd || op == OpDeduct
}

// StockRecord is the unit of truth: one row per (product, variant, warehouse).
// Quantity is never negative; every mutation path rejects deltas that would
// drive it below zero.
type StockRecord struct {
	ID           id.ID     `json:"id"`
	ProductID    id.ID     `json:"productId"`
	Variant      Variant   `json:"variantName"`
	WarehouseID  id.ID     `json:"warehouseId"`
	Quantity     int64     `json:"quantity"`
	ReorderPoint int64     `json:"reorderPoint"`

	// Version for optimistic locking (incremented on each save)
	Version int `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewStockRecord creates a validated stock record with a generated ID.
func NewStockRecord(productID id.ID, variant Variant, warehouseID id.ID, quantity, reorderPoint int64) (*StockRecord, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if id.IsNil(warehouseID) {
		return nil, apperror.NewValidation("warehouse is required").WithDetail("field", "warehouseId")
	}
	if !variant.IsBase() && variant.Name() == "" {
		return nil, apperror.NewValidation("variant name must not be empty").WithDetail("field", "variantName")
	}
	if quantity < 0 {
		return nil, apperror.NewValidation("quantity must not be negative").
			WithDetail("field", "quantity").
			WithDetail("value", quantity)
	}
	if reorderPoint < 0 {
		return nil, apperror.NewValidation("reorder point must not be negative").
			WithDetail("field", "reorderPoint").
			WithDetail("value", reorderPoint)
	}

	now := time.Now().UTC()
	return &StockRecord{
		ID:           id.New(),
		ProductID:    productID,
		Variant:      variant,
		WarehouseID:  warehouseID,
		Quantity:     quantity,
		ReorderPoint: reorderPoint,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Key returns the composite key identifying this record.
func (r *StockRecord) Key() Key {
	return Key{ProductID: r.ProductID, Variant: r.Variant, WarehouseID: r.WarehouseID}
}

// State derives the stock state relative to the reorder point.
func (r *StockRecord) State() State {
	switch {
	case r.Quantity == 0:
		return StateOutOfStock
	case r.Quantity <= r.ReorderPoint:
		return StateLowStock
	default:
		return StateHealthy
	}
}

// IsLowStock reports whether the record is flagged low-stock (but not empty).
func (r *StockRecord) IsLowStock() bool {
	return r.Quantity > 0 && r.Quantity <= r.ReorderPoint
}

// IsOutOfStock reports whether the record has no stock at all.
func (r *StockRecord) IsOutOfStock() bool {
	return r.Quantity == 0
}

// Key is the uniqueness triple: at most one StockRecord exists per Key.
type Key struct {
	ProductID   id.ID
	Variant     Variant
	WarehouseID id.ID
}

// AdjustmentEntry is one line of the append-only audit trail. Entries are
// created atomically alongside the record mutation and never updated or
// deleted.
type AdjustmentEntry struct {
	ID                id.ID     `json:"id"`
	StockRecordID     id.ID     `json:"stockRecordId"`
	Delta             int64     `json:"delta"`
	ResultingQuantity int64     `json:"resultingQuantity"`
	Reason            string    `json:"reason"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewAdjustmentEntry creates an audit entry for an applied mutation.
func NewAdjustmentEntry(stockRecordID id.ID, delta, resultingQuantity int64, reason string) *AdjustmentEntry {
	return &AdjustmentEntry{
		ID:                id.New(),
		StockRecordID:     stockRecordID,
		Delta:             delta,
		ResultingQuantity: resultingQuantity,
		Reason:            reason,
		CreatedAt:         time.Now().UTC(),
	}
}
