// Package stock_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package stock_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	stockRecordsTable = "stock_records"
	adjustmentsTable  = "stock_adjustments"

	uniqueViolation = "23505"
)

var stockRecordCols = []string{
	"id", "product_id", "variant_name", "warehouse_id",
	"quantity", "reorder_point", "version", "created_at", "updated_at",
}

var adjustmentCols = []string{
	"id", "stock_record_id", "delta", "resulting_quantity", "reason", "created_at",
}

// stockRow is the flat database shape; the variant option type maps to a
// nullable column.
type stockRow struct {
	ID           id.ID     `db:"id"`
	ProductID    id.ID     `db:"product_id"`
	VariantName  *string   `db:"variant_name"`
	WarehouseID  id.ID     `db:"warehouse_id"`
	Quantity     int64     `db:"quantity"`
	ReorderPoint int64     `db:"reorder_point"`
	Version      int       `db:"version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r stockRow) toRecord() *stock.StockRecord {
	return &stock.StockRecord{
		ID:           r.ID,
		ProductID:    r.ProductID,
		Variant:      stock.VariantFromName(r.VariantName),
		WarehouseID:  r.WarehouseID,
		Quantity:     r.Quantity,
		ReorderPoint: r.ReorderPoint,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Compile-time check that Repo implements stock.Repository.
var _ stock.Repository = (*Repo)(nil)

// Repo implements stock.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new stock ledger repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a single stock record.
func (r *Repo) Create(ctx context.Context, record *stock.StockRecord) error {
	return r.CreateBatch(ctx, []*stock.StockRecord{record})
}

// CreateBatch inserts records in one statement. Any key collision fails the
// whole insert, so inside a transaction the batch is all-or-nothing.
func (r *Repo) CreateBatch(ctx context.Context, records []*stock.StockRecord) error {
	if len(records) == 0 {
		return nil
	}

	q := r.builder.Insert(stockRecordsTable).Columns(stockRecordCols...)

	for _, rec := range records {
		q = q.Values(
			rec.ID, rec.ProductID, rec.Variant.NullableName(), rec.WarehouseID,
			rec.Quantity, rec.ReorderPoint, rec.Version, rec.CreatedAt, rec.UpdatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.NewDuplicate("stock record", "key", describeKeys(records)).WithCause(err)
		}
		return fmt.Errorf("insert stock records: %w", err)
	}

	return nil
}

func describeKeys(records []*stock.StockRecord) string {
	if len(records) == 1 {
		k := records[0].Key()
		return fmt.Sprintf("%s/%s/%s", k.ProductID, records[0].Variant, k.WarehouseID)
	}
	return fmt.Sprintf("%d records", len(records))
}

// GetByID retrieves a record by ID.
func (r *Repo) GetByID(ctx context.Context, recordID id.ID) (*stock.StockRecord, error) {
	return r.get(ctx, recordID, false)
}

// GetForUpdate retrieves a record with a row lock. Only meaningful inside a
// transaction.
func (r *Repo) GetForUpdate(ctx context.Context, recordID id.ID) (*stock.StockRecord, error) {
	return r.get(ctx, recordID, true)
}

func (r *Repo) get(ctx context.Context, recordID id.ID, forUpdate bool) (*stock.StockRecord, error) {
	q := r.builder.
		Select(stockRecordCols...).
		From(stockRecordsTable).
		Where(squirrel.Eq{"id": recordID})

	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stockRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock record", recordID.String())
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}

	return row.toRecord(), nil
}

// Find retrieves records matching the filter, ordered by creation time.
func (r *Repo) Find(ctx context.Context, filter stock.Filter) ([]*stock.StockRecord, error) {
	q := r.builder.
		Select(stockRecordCols...).
		From(stockRecordsTable).
		OrderBy("created_at")

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []stockRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("find stock records: %w", err)
	}

	records := make([]*stock.StockRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}

	return records, nil
}

// Save persists a mutated record with an optimistic version check.
func (r *Repo) Save(ctx context.Context, record *stock.StockRecord) error {
	q := r.builder.
		Update(stockRecordsTable).
		Set("quantity", record.Quantity).
		Set("reorder_point", record.ReorderPoint).
		Set("updated_at", record.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": record.ID}).
		Where(squirrel.Eq{"version": record.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock record", record.ID)
	}

	record.Version++
	return nil
}

// AppendEntry writes one audit trail entry.
func (r *Repo) AppendEntry(ctx context.Context, entry *stock.AdjustmentEntry) error {
	q := r.builder.
		Insert(adjustmentsTable).
		Columns(adjustmentCols...).
		Values(entry.ID, entry.StockRecordID, entry.Delta, entry.ResultingQuantity, entry.Reason, entry.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert adjustment entry: %w", err)
	}

	return nil
}

// EntriesByRecord lists audit entries for a record, newest first.
func (r *Repo) EntriesByRecord(ctx context.Context, recordID id.ID, opts stock.EntryListOptions) ([]*stock.AdjustmentEntry, error) {
	q := r.builder.
		Select(adjustmentCols...).
		From(adjustmentsTable).
		Where(squirrel.Eq{"stock_record_id": recordID}).
		OrderBy("created_at DESC")

	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*stock.AdjustmentEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list adjustment entries: %w", err)
	}

	return entries, nil
}
