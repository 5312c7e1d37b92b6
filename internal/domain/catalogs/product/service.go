package product

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
)

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService[*Product](repo, txManager, "product"),
		repo:           repo,
	}
}

// GetActive retrieves a product by ID, treating soft-deleted products as
// not found. The ledger and rollup consult the catalog through this path.
func (s *Service) GetActive(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.DeletionMark {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}
