package dto

import (
	"github.com/shopspring/decimal"

	"stockroom/internal/domain/catalogs/product"
)

// ProductVariantRequest is one declared variant.
type ProductVariantRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code      string                  `json:"code"`
	Name      string                  `json:"name" binding:"required"`
	Thumbnail *string                 `json:"thumbnail"`
	Variants  []ProductVariantRequest `json:"variants"`
}

// ToEntity converts the request to a domain product.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name)
	p.Thumbnail = r.Thumbnail
	for _, v := range r.Variants {
		p.AddVariant(v.Name, v.Price)
	}
	return p
}

// UpdateProductRequest for updating products. Nil fields stay unchanged;
// a non-nil variants slice replaces the declared set.
type UpdateProductRequest struct {
	Code      *string                  `json:"code"`
	Name      *string                  `json:"name"`
	Thumbnail *string                  `json:"thumbnail"`
	Variants  *[]ProductVariantRequest `json:"variants"`
}

// ApplyTo applies the update onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Thumbnail != nil {
		p.Thumbnail = r.Thumbnail
	}
	if r.Variants != nil {
		p.Variants = nil
		for _, v := range *r.Variants {
			p.AddVariant(v.Name, v.Price)
		}
	}
}

// ProductVariantResponse is one declared variant.
type ProductVariantResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Position int             `json:"position"`
}

// ProductResponse contains product fields.
type ProductResponse struct {
	ID           string                   `json:"id"`
	Code         string                   `json:"code"`
	Name         string                   `json:"name"`
	Thumbnail    *string                  `json:"thumbnail,omitempty"`
	Variants     []ProductVariantResponse `json:"variants"`
	DeletionMark bool                     `json:"deletionMark"`
	Version      int                      `json:"version"`
}

// FromProduct creates ProductResponse from a domain product.
func FromProduct(p *product.Product) ProductResponse {
	variants := make([]ProductVariantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, ProductVariantResponse{
			ID:       v.ID.String(),
			Name:     v.Name,
			Price:    v.Price,
			Position: v.Position,
		})
	}

	return ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Thumbnail:    p.Thumbnail,
		Variants:     variants,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
