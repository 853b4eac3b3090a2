package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/event"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
	apperrors "github.com/FilipeCampos25/SiteClienteLucas/pkg/errors"
)

// AddItemInput holds the parameters for adding an item to the cart. Name and
// UnitPrice are the client's denormalized catalog snapshot; either may be
// absent.
type AddItemInput struct {
	ProductID int64    `json:"id" validate:"required,gte=1"`
	Name      string   `json:"nome"`
	UnitPrice *float64 `json:"valor" validate:"omitempty,gte=0"`
}

// CartService implements the cart reconciliation rules over the store. Every
// operation reads the full cart, applies one change and writes the full cart
// back; concurrent writers are last-write-wins.
type CartService struct {
	store    repository.CartStore
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store repository.CartStore, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a device. Missing or unreadable records
// come back empty, never as an error.
func (s *CartService) GetCart(ctx context.Context, deviceID string) (domain.Cart, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}

	cart, err := s.store.Read(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds one unit of a product to the device's cart. An existing line
// is incremented and its denormalized name/price refreshed when the client
// supplied them; a new line starts at quantity 1 with a placeholder name and
// zero price when the client supplied none.
func (s *CartService) AddItem(ctx context.Context, deviceID string, input AddItemInput) (domain.Cart, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}
	if input.ProductID < 1 {
		return nil, apperrors.InvalidInput("product id must be greater than 0")
	}
	if input.UnitPrice != nil && *input.UnitPrice < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	cart, err := s.store.Read(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get cart for add: %w", err)
	}

	if i := cart.FindIndex(input.ProductID); i >= 0 {
		cart[i].Quantity++
		if input.Name != "" {
			cart[i].Name = input.Name
		}
		if input.UnitPrice != nil {
			cart[i].UnitPrice = *input.UnitPrice
		}
	} else {
		name := input.Name
		if name == "" {
			name = domain.PlaceholderName(input.ProductID)
		}
		var price float64
		if input.UnitPrice != nil {
			price = *input.UnitPrice
		}
		cart = append(cart, domain.LineItem{
			ID:        input.ProductID,
			Quantity:  1,
			Name:      name,
			UnitPrice: price,
		})
	}

	if err := s.store.Write(ctx, deviceID, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartUpdated(ctx, deviceID, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish carrinho.updated event",
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("device_id", deviceID),
		slog.Int64("product_id", input.ProductID),
		slog.Int("total_items", cart.TotalItems()),
	)

	return cart, nil
}

// RemoveItem removes one unit of a product from the device's cart. A line at
// quantity 1 (or a legacy line at 0) is dropped entirely; an absent product
// is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, deviceID string, productID int64) (domain.Cart, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}
	if productID < 1 {
		return nil, apperrors.InvalidInput("product id must be greater than 0")
	}

	cart, err := s.store.Read(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	i := cart.FindIndex(productID)
	if i < 0 {
		return cart, nil
	}

	if cart[i].Quantity > 1 {
		cart[i].Quantity--
	} else {
		cart = append(cart[:i], cart[i+1:]...)
	}

	if err := s.store.Write(ctx, deviceID, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartUpdated(ctx, deviceID, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish carrinho.updated event",
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("device_id", deviceID),
		slog.Int64("product_id", productID),
		slog.Int("total_items", cart.TotalItems()),
	)

	return cart, nil
}

// CountItems returns the badge number: total quantity across all lines.
func (s *CartService) CountItems(ctx context.Context, deviceID string) (int, error) {
	if deviceID == "" {
		return 0, apperrors.InvalidInput("device id is required")
	}

	cart, err := s.store.Read(ctx, deviceID)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}

	return cart.TotalItems(), nil
}

// ClearCart empties the device's cart.
func (s *CartService) ClearCart(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return apperrors.InvalidInput("device id is required")
	}

	if err := s.store.Clear(ctx, deviceID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, deviceID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish carrinho.cleared event",
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("device_id", deviceID),
	)

	return nil
}
