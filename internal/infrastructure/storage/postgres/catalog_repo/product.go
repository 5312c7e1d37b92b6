package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	productTable         = "cat_products"
	productVariantsTable = "cat_product_variants"
)

// ProductRepo implements product.Repository.
// Variant lines live in a separate table and are loaded and replaced
// together with the product row.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// Create inserts the product row and its variant lines.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Create(ctx, p); err != nil {
		return err
	}
	return r.insertVariants(ctx, p.ID, p.Variants)
}

// Update modifies the product row and replaces its variant lines.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Update(ctx, p); err != nil {
		return err
	}
	return r.replaceVariants(ctx, p.ID, p.Variants)
}

// GetByID retrieves a product with its variant lines.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	p.Variants, err = r.getVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// GetByCode retrieves a product by code with its variant lines.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	p.Variants, err = r.getVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// List retrieves products with their variant lines.
func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result, err := r.BaseCatalogRepo.List(ctx, filter)
	if err != nil {
		return result, err
	}

	for _, p := range result.Items {
		p.Variants, err = r.getVariants(ctx, p.ID)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (r *ProductRepo) getVariants(ctx context.Context, productID id.ID) ([]product.ProductVariant, error) {
	q := r.Builder().
		Select("id", "name", "price", "position").
		From(productVariantsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("position")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var variants []product.ProductVariant
	if err := pgxscan.Select(ctx, r.Querier(ctx), &variants, sql, args...); err != nil {
		return nil, fmt.Errorf("get variants: %w", err)
	}

	return variants, nil
}

func (r *ProductRepo) insertVariants(ctx context.Context, productID id.ID, variants []product.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(productVariantsTable).
		Columns("id", "product_id", "name", "price", "position")

	for _, v := range variants {
		q = q.Values(v.ID, productID, v.Name, v.Price, v.Position)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert variants: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert variants: %w", err)
	}

	return nil
}

// replaceVariants deletes existing variant lines and inserts the new set.
func (r *ProductRepo) replaceVariants(ctx context.Context, productID id.ID, variants []product.ProductVariant) error {
	deleteSQL := "DELETE FROM " + productVariantsTable + " WHERE product_id = $1"
	if _, err := r.Querier(ctx).Exec(ctx, deleteSQL, productID); err != nil {
		return fmt.Errorf("delete existing variants: %w", err)
	}

	return r.insertVariants(ctx, productID, variants)
}
