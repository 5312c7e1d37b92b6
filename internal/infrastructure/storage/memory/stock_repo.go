// Package memory provides in-memory implementations of the storage
// interfaces for tests and local development.
package memory

import (
	"context"
	"sync"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
)

// Compile-time check that StockRepo implements stock.Repository.
var _ stock.Repository = (*StockRepo)(nil)

// StockRepo is a mutex-guarded, map-backed stock.Repository.
// It enforces the same key uniqueness and version checks as the SQL
// implementation.
type StockRepo struct {
	mu      sync.RWMutex
	records map[id.ID]*stock.StockRecord
	byKey   map[stock.Key]id.ID
	entries map[id.ID][]*stock.AdjustmentEntry

	// insertion order, so Find is deterministic
	order []id.ID
}

// NewStockRepo creates an empty in-memory stock repository.
func NewStockRepo() *StockRepo {
	return &StockRepo{
		records: make(map[id.ID]*stock.StockRecord),
		byKey:   make(map[stock.Key]id.ID),
		entries: make(map[id.ID][]*stock.AdjustmentEntry),
	}
}

// Create inserts a single record.
func (r *StockRepo) Create(ctx context.Context, record *stock.StockRecord) error {
	return r.CreateBatch(ctx, []*stock.StockRecord{record})
}

// CreateBatch inserts records all-or-nothing: every key is validated under
// one lock before any record is stored.
func (r *StockRepo) CreateBatch(ctx context.Context, records []*stock.StockRecord) error {
	if len(records) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[stock.Key]bool, len(records))
	for _, rec := range records {
		key := rec.Key()
		if _, exists := r.byKey[key]; exists || seen[key] {
			return apperror.NewDuplicate("stock record", "key", key.ProductID.String()+"/"+rec.Variant.String()+"/"+key.WarehouseID.String())
		}
		seen[key] = true
	}

	for _, rec := range records {
		cp := *rec
		r.records[rec.ID] = &cp
		r.byKey[rec.Key()] = rec.ID
		r.order = append(r.order, rec.ID)
	}

	return nil
}

// GetByID retrieves a copy of the record.
func (r *StockRepo) GetByID(ctx context.Context, recordID id.ID) (*stock.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(recordID)
}

// GetForUpdate behaves like GetByID; callers serialize through the service's
// per-record lock, so no row locking is needed here.
func (r *StockRepo) GetForUpdate(ctx context.Context, recordID id.ID) (*stock.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(recordID)
}

func (r *StockRepo) getLocked(recordID id.ID) (*stock.StockRecord, error) {
	rec, ok := r.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("stock record", recordID.String())
	}
	cp := *rec
	return &cp, nil
}

// Find retrieves records matching the filter in insertion order.
func (r *StockRepo) Find(ctx context.Context, filter stock.Filter) ([]*stock.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var wanted map[id.ID]bool
	if len(filter.ProductIDs) > 0 {
		wanted = make(map[id.ID]bool, len(filter.ProductIDs))
		for _, pid := range filter.ProductIDs {
			wanted[pid] = true
		}
	}

	var out []*stock.StockRecord
	for _, recID := range r.order {
		rec, ok := r.records[recID]
		if !ok {
			continue
		}
		if filter.ProductID != nil && rec.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && rec.WarehouseID != *filter.WarehouseID {
			continue
		}
		if wanted != nil && !wanted[rec.ProductID] {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}

	return out, nil
}

// Save persists a mutated record with a version check.
func (r *StockRepo) Save(ctx context.Context, record *stock.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[record.ID]
	if !ok {
		return apperror.NewNotFound("stock record", record.ID.String())
	}

	if current.Version != record.Version {
		return apperror.NewConcurrentModification("stock record", record.ID)
	}

	cp := *record
	cp.Version++
	r.records[record.ID] = &cp
	record.Version++

	return nil
}

// AppendEntry stores one audit entry.
func (r *StockRepo) AppendEntry(ctx context.Context, entry *stock.AdjustmentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	r.entries[entry.StockRecordID] = append(r.entries[entry.StockRecordID], &cp)

	return nil
}

// EntriesByRecord lists audit entries newest first.
func (r *StockRepo) EntriesByRecord(ctx context.Context, recordID id.ID, opts stock.EntryListOptions) ([]*stock.AdjustmentEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// entries are appended in commit order; newest first is the reverse
	stored := r.entries[recordID]
	out := make([]*stock.AdjustmentEntry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		out = append(out, &cp)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}

	return out, nil
}
