package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/pkg/logger"
)

// Service is the adjustment engine: the only legal path to mutate quantity.
// Every mutation is an atomic read-validate-write under a per-record lock,
// committing the record change and its audit entry together.
type Service struct {
	repo     Repository
	txm      tx.Manager
	products ProductCatalog
	notifier Notifier
	locks    *keyedMutex
}

// NewService creates the adjustment engine. notifier may be nil when no
// post-commit consumers are wired.
func NewService(repo Repository, txm tx.Manager, products ProductCatalog, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		txm:      txm,
		products: products,
		notifier: notifier,
		locks:    newKeyedMutex(),
	}
}

// QuickAdjust applies a single +/- delta without a caller-supplied reason.
// Add has no upper bound; Deduct rejects the whole operation when amount
// exceeds the current quantity (never clamps to zero).
func (s *Service) QuickAdjust(ctx context.Context, stockID id.ID, op Op, amount int64) (*StockRecord, error) {
	if !op.IsValid() {
		return nil, apperror.NewValidation("unknown operation").
			WithDetail("field", "operation").
			WithDetail("value", string(op))
	}
	if amount <= 0 {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", amount)
	}

	delta := amount
	if op == OpDeduct {
		delta = -amount
	}

	return s.applyAdjustment(ctx, stockID, delta, string(op))
}

// AdjustWithReason deducts stock with a mandatory audit reason. Used for
// damage/loss/correction workflows that require a paper trail.
func (s *Service) AdjustWithReason(ctx context.Context, stockID id.ID, amount int64, reason string) (*StockRecord, error) {
	if amount <= 0 {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", amount)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.NewValidation("reason is required").
			WithDetail("field", "reason")
	}

	return s.applyAdjustment(ctx, stockID, -amount, reason)
}

// applyAdjustment is the invariant core shared by both operation shapes.
// The per-record lock serializes concurrent adjustments of the same record
// so no caller can read a stale quantity; the row lock taken by GetForUpdate
// backs that up at the storage layer. Record and audit entry commit together
// or not at all.
func (s *Service) applyAdjustment(ctx context.Context, stockID id.ID, delta int64, reason string) (*StockRecord, error) {
	unlock := s.locks.Lock(stockID)
	defer unlock()

	var record *StockRecord
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, stockID)
		if err != nil {
			return err
		}

		newQuantity := r.Quantity + delta
		if newQuantity < 0 {
			return apperror.NewInsufficientStock(stockID.String(), -delta, r.Quantity)
		}

		r.Quantity = newQuantity
		r.UpdatedAt = time.Now().UTC()
		if err := s.repo.Save(ctx, r); err != nil {
			return fmt.Errorf("save stock record: %w", err)
		}

		entry := NewAdjustmentEntry(r.ID, delta, newQuantity, reason)
		if err := s.repo.AppendEntry(ctx, entry); err != nil {
			return fmt.Errorf("append adjustment entry: %w", err)
		}

		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"stock_id", record.ID,
		"delta", delta,
		"quantity", record.Quantity,
		"state", record.State(),
		"reason", reason,
	)

	s.notify(ctx, ChangeEvent{
		Kind:       ChangeAdjusted,
		Record:     *record,
		Delta:      delta,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})

	return record, nil
}

// ProvisionEntry describes one record to create for a product entering a warehouse.
type ProvisionEntry struct {
	Variant      Variant
	Quantity     int64
	ReorderPoint int64
}

// Provision bootstraps the stock records for a (product x variant) set
// entering a warehouse. The batch is all-or-nothing: any key collision fails
// the whole call without partial application.
//
// Policy: products with declared variants need exactly one entry per variant
// name and no base entry; variant-less products exactly one base entry.
func (s *Service) Provision(ctx context.Context, productID, warehouseID id.ID, entries []ProvisionEntry) ([]*StockRecord, error) {
	if len(entries) == 0 {
		return nil, apperror.NewValidation("at least one entry is required").
			WithDetail("field", "entries")
	}

	declared, err := s.products.DeclaredVariants(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := checkProvisionPolicy(declared, entries); err != nil {
		return nil, err
	}

	records := make([]*StockRecord, 0, len(entries))
	for _, e := range entries {
		record, err := NewStockRecord(productID, e.Variant, warehouseID, e.Quantity, e.ReorderPoint)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateBatch(ctx, records)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock provisioned",
		"product_id", productID,
		"warehouse_id", warehouseID,
		"records", len(records),
	)

	now := time.Now().UTC()
	for _, record := range records {
		s.notify(ctx, ChangeEvent{
			Kind:       ChangeProvisioned,
			Record:     *record,
			Delta:      record.Quantity,
			OccurredAt: now,
		})
	}

	return records, nil
}

// checkProvisionPolicy validates the entry set against the catalog's
// declared variants.
func checkProvisionPolicy(declared []string, entries []ProvisionEntry) error {
	seen := make(map[string]bool, len(entries))
	baseCount := 0
	for _, e := range entries {
		if e.Variant.IsBase() {
			baseCount++
			continue
		}
		name := e.Variant.Name()
		if name == "" {
			return apperror.NewValidation("variant name must not be empty").
				WithDetail("field", "entries")
		}
		if seen[name] {
			return apperror.NewValidation("duplicate variant in batch").
				WithDetail("variant", name)
		}
		seen[name] = true
	}

	if len(declared) == 0 {
		if baseCount != 1 || len(entries) != 1 {
			return apperror.NewValidation("product has no variants: supply exactly one base entry").
				WithDetail("entries", len(entries))
		}
		return nil
	}

	if baseCount > 0 {
		return apperror.NewValidation("product has variants: base entry is not allowed").
			WithDetail("declared_variants", len(declared))
	}
	if len(entries) != len(declared) {
		return apperror.NewValidation("supply exactly one entry per declared variant").
			WithDetail("declared_variants", len(declared)).
			WithDetail("entries", len(entries))
	}
	for _, name := range declared {
		if !seen[name] {
			return apperror.NewValidation("missing entry for declared variant").
				WithDetail("variant", name)
		}
	}

	return nil
}

// GetByID retrieves one stock record.
func (s *Service) GetByID(ctx context.Context, stockID id.ID) (*StockRecord, error) {
	return s.repo.GetByID(ctx, stockID)
}

// Find lists stock records matching the filter.
func (s *Service) Find(ctx context.Context, filter Filter) ([]*StockRecord, error) {
	return s.repo.Find(ctx, filter)
}

// Entries lists the audit trail for a record, newest first.
func (s *Service) Entries(ctx context.Context, stockID id.ID, opts EntryListOptions) ([]*AdjustmentEntry, error) {
	if _, err := s.repo.GetByID(ctx, stockID); err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	return s.repo.EntriesByRecord(ctx, stockID, opts)
}

// notify fans the event out to post-commit consumers. Delivery failures are
// logged, never surfaced: the mutation is already committed.
func (s *Service) notify(ctx context.Context, event ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.StockChanged(ctx, event); err != nil {
		logger.Warn(ctx, "stock change notification failed",
			"stock_id", event.Record.ID,
			"kind", event.Kind,
			"error", err,
		)
	}
}
