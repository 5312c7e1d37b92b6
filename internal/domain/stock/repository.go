package stock

import (
	"context"

	"stockroom/internal/core/id"
)

// Filter narrows Find results. Zero-value filter matches everything.
type Filter struct {
	// ProductID restricts to records of one product.
	ProductID *id.ID

	// WarehouseID restricts to records held in one warehouse.
	WarehouseID *id.ID

	// ProductIDs restricts to records of a set of products (used by the rollup).
	ProductIDs []id.ID
}

// EntryListOptions paginates the audit trail.
type EntryListOptions struct {
	Limit  int
	Offset int
}

// Repository defines persistence for stock records and their audit trail.
//
// Save is only legal from within the adjustment service; all other callers
// must treat records as read-only.
type Repository interface {
	// Create inserts a new record. Returns a duplicate-entry error when a
	// record already exists for the same (product, variant, warehouse) key.
	Create(ctx context.Context, record *StockRecord) error

	// CreateBatch inserts records all-or-nothing: any key collision fails
	// the whole batch leaving no new rows behind.
	CreateBatch(ctx context.Context, records []*StockRecord) error

	// GetByID retrieves a record by ID.
	GetByID(ctx context.Context, recordID id.ID) (*StockRecord, error)

	// GetForUpdate retrieves a record with a row lock, for use inside a
	// transaction that will Save it.
	GetForUpdate(ctx context.Context, recordID id.ID) (*StockRecord, error)

	// Find retrieves records matching the filter, ordered by creation time.
	Find(ctx context.Context, filter Filter) ([]*StockRecord, error)

	// Save persists a mutated record with an optimistic version check.
	Save(ctx context.Context, record *StockRecord) error

	// AppendEntry writes one audit trail entry.
	AppendEntry(ctx context.Context, entry *AdjustmentEntry) error

	// EntriesByRecord lists audit entries for a record, newest first.
	EntriesByRecord(ctx context.Context, recordID id.ID, opts EntryListOptions) ([]*AdjustmentEntry, error)
}

// ProductCatalog is the slice of the product catalog provisioning consults.
// The catalog itself is owned elsewhere; the ledger only reads variant names.
type ProductCatalog interface {
	// DeclaredVariants returns the variant names declared for a product, in
	// catalog order. An empty slice means the product has no variant
	// dimension. Returns a not-found error for unknown products.
	DeclaredVariants(ctx context.Context, productID id.ID) ([]string, error)
}
