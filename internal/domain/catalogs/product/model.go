// Package product provides the Product catalog: the display data and the
// declared variant set the stock ledger and rollup read.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
)

// Product represents a catalog product with zero or more named variants.
// A product without variants is stocked as the base product.
type Product struct {
	entity.Catalog

	// Thumbnail is an optional image URL for list views
	Thumbnail *string `db:"thumbnail" json:"thumbnail,omitempty"`

	// Variants in declared order; empty means no variant dimension
	Variants []ProductVariant `db:"-" json:"variants"`
}

// ProductVariant is one named variant with its unit price.
type ProductVariant struct {
	ID       id.ID           `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Position int             `db:"position" json:"position"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
	}
}

// AddVariant appends a named variant in declared order.
func (p *Product) AddVariant(name string, price decimal.Decimal) {
	p.Variants = append(p.Variants, ProductVariant{
		ID:       id.New(),
		Name:     name,
		Price:    price,
		Position: len(p.Variants) + 1,
	})
}

// VariantNames returns the declared variant names in order.
func (p *Product) VariantNames() []string {
	names := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		names = append(names, v.Name)
	}
	return names
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	seen := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		if v.Name == "" {
			return apperror.NewValidation("variant name must not be empty").
				WithDetail("field", "variants")
		}
		if seen[v.Name] {
			return apperror.NewValidation("duplicate variant name").
				WithDetail("variant", v.Name)
		}
		seen[v.Name] = true

		if v.Price.IsNegative() {
			return apperror.NewValidation("variant price must not be negative").
				WithDetail("variant", v.Name).
				WithDetail("price", v.Price.String())
		}
	}

	return nil
}
