package product

import (
	"stockroom/internal/domain"
)

// Repository defines the interface for Product persistence.
// Implementations load and replace the variant lines together with the
// product row; variants have no independent lifecycle.
type Repository interface {
	domain.CatalogRepository[*Product]
}
