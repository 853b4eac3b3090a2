package repository

import (
	"context"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
)

// CartStore defines the interface for cart persistence operations. Carts are
// keyed by device ID and stored whole; writes replace the previous record.
type CartStore interface {
	// Read retrieves the cart for a device. Missing or unreadable records
	// yield an empty cart, never an error.
	Read(ctx context.Context, deviceID string) (domain.Cart, error)

	// Write persists the full cart for a device, replacing any previous record.
	Write(ctx context.Context, deviceID string, cart domain.Cart) error

	// Clear resets the cart for a device to empty.
	Clear(ctx context.Context, deviceID string) error

	// Stats walks all stored carts and reports how many are non-empty and
	// how many items they hold in total.
	Stats(ctx context.Context) (CartStats, error)
}

// CartStats is a point-in-time aggregate over all stored carts.
type CartStats struct {
	Carts int
	Items int
}

// ProductFilter narrows and pages a product listing.
type ProductFilter struct {
	ActiveOnly bool
	Search     *string
	Page       int
	PerPage    int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a product, optionally with its image, and fills in the
	// generated ID and timestamps.
	Create(ctx context.Context, p *domain.Product, img *domain.ProductImage) error

	// GetByID retrieves a product by its ID.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List retrieves products matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update rewrites a product's fields; a non-nil img replaces the stored image.
	Update(ctx context.Context, p *domain.Product, img *domain.ProductImage) error

	// Delete deactivates a product. The row is kept so ETags and media URLs
	// for historic carts keep resolving.
	Delete(ctx context.Context, id int64) error

	// GetImage retrieves the stored image for a product.
	GetImage(ctx context.Context, id int64) (*domain.ProductImage, error)
}
