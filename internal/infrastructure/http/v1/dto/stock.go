package dto

import (
	"time"

	"stockroom/internal/domain/stock"
)

// --- Requests ---

// ProvisionEntryRequest is one record to create when provisioning.
// A null variantName means the base (variant-less) product.
type ProvisionEntryRequest struct {
	VariantName  *string `json:"variantName"`
	Quantity     int64   `json:"quantity"`
	ReorderPoint int64   `json:"reorderPoint"`
}

// ProvisionRequest creates the initial stock records for a product entering
// a warehouse.
type ProvisionRequest struct {
	ProductID   string                  `json:"productId" binding:"required"`
	WarehouseID string                  `json:"warehouseId" binding:"required"`
	Entries     []ProvisionEntryRequest `json:"entries" binding:"required"`
}

// ToEntries converts the request entries to domain provision entries.
func (r ProvisionRequest) ToEntries() []stock.ProvisionEntry {
	entries := make([]stock.ProvisionEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, stock.ProvisionEntry{
			Variant:      stock.VariantFromName(e.VariantName),
			Quantity:     e.Quantity,
			ReorderPoint: e.ReorderPoint,
		})
	}
	return entries
}

// AdjustRequest is a quick correction in either direction.
type AdjustRequest struct {
	Operation string `json:"operation" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
}

// AdjustWithReasonRequest is a documented deduction.
type AdjustWithReasonRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// --- Responses ---

// StockResponse is one stock record.
type StockResponse struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	VariantName  *string   `json:"variantName"`
	WarehouseID  string    `json:"warehouseId"`
	Quantity     int64     `json:"quantity"`
	ReorderPoint int64     `json:"reorderPoint"`
	State        string    `json:"state"`
	IsLowStock   bool      `json:"isLowStock"`
	IsOutOfStock bool      `json:"isOutOfStock"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromStockRecord creates StockResponse from a domain record.
func FromStockRecord(r *stock.StockRecord) StockResponse {
	return StockResponse{
		ID:           r.ID.String(),
		ProductID:    r.ProductID.String(),
		VariantName:  r.Variant.NullableName(),
		WarehouseID:  r.WarehouseID.String(),
		Quantity:     r.Quantity,
		ReorderPoint: r.ReorderPoint,
		State:        string(r.State()),
		IsLowStock:   r.IsLowStock(),
		IsOutOfStock: r.IsOutOfStock(),
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// FromStockRecords maps a slice of records.
func FromStockRecords(records []*stock.StockRecord) []StockResponse {
	out := make([]StockResponse, 0, len(records))
	for _, r := range records {
		out = append(out, FromStockRecord(r))
	}
	return out
}

// AdjustmentEntryResponse is one audit trail line.
type AdjustmentEntryResponse struct {
	ID                string    `json:"id"`
	StockRecordID     string    `json:"stockRecordId"`
	Delta             int64     `json:"delta"`
	ResultingQuantity int64     `json:"resultingQuantity"`
	Reason            string    `json:"reason"`
	CreatedAt         time.Time `json:"createdAt"`
}

// FromAdjustmentEntry creates AdjustmentEntryResponse from a domain entry.
func FromAdjustmentEntry(e *stock.AdjustmentEntry) AdjustmentEntryResponse {
	return AdjustmentEntryResponse{
		ID:                e.ID.String(),
		StockRecordID:     e.StockRecordID.String(),
		Delta:             e.Delta,
		ResultingQuantity: e.ResultingQuantity,
		Reason:            e.Reason,
		CreatedAt:         e.CreatedAt,
	}
}

// FromAdjustmentEntries maps a slice of entries.
func FromAdjustmentEntries(entries []*stock.AdjustmentEntry) []AdjustmentEntryResponse {
	out := make([]AdjustmentEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromAdjustmentEntry(e))
	}
	return out
}
