package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	pkgkafka "github.com/FilipeCampos25/SiteClienteLucas/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated       = "storefront.carrinho.updated"
	TopicCartCleared       = "storefront.carrinho.cleared"
	TopicCheckoutCompleted = "storefront.checkout.completed"
	TopicProductCreated    = "storefront.produto.created"
	TopicProductUpdated    = "storefront.produto.updated"
	TopicProductDeleted    = "storefront.produto.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "carrinho"
	AggregateTypeCheckout = "checkout"
	AggregateTypeProduct  = "produto"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a carrinho.updated event.
type CartUpdatedData struct {
	DeviceID   string         `json:"device_id"`
	Items      []CartItemData `json:"items"`
	TotalItems int            `json:"total_items"`
	Total      float64        `json:"total"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// CartClearedData is the payload for a carrinho.cleared event.
type CartClearedData struct {
	DeviceID string `json:"device_id"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
type CheckoutCompletedData struct {
	DeviceID   string  `json:"device_id"`
	TotalItems int     `json:"total_items"`
	Total      float64 `json:"total"`
	LinkURL    string  `json:"link_url"`
}

// ProductData is the payload for produto.created and produto.updated events.
type ProductData struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Active    bool    `json:"active"`
}

// ProductDeletedData is the payload for a produto.deleted event.
type ProductDeletedData struct {
	ProductID int64 `json:"product_id"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a carrinho.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, deviceID string, cart domain.Cart) error {
	items := make([]CartItemData, len(cart))
	for i, li := range cart {
		items[i] = CartItemData{
			ProductID: li.ID,
			Name:      li.Name,
			UnitPrice: li.UnitPrice,
			Quantity:  li.Quantity,
		}
	}

	data := CartUpdatedData{
		DeviceID:   deviceID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		Total:      cart.Total(),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, deviceID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create carrinho.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish carrinho.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published carrinho.updated event",
		slog.String("device_id", deviceID),
		slog.Int("total_items", cart.TotalItems()),
	)

	return nil
}

// PublishCartCleared publishes a carrinho.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, deviceID string) error {
	data := CartClearedData{DeviceID: deviceID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, deviceID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create carrinho.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish carrinho.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published carrinho.cleared event",
		slog.String("device_id", deviceID),
	)

	return nil
}

// PublishCheckoutCompleted publishes a checkout.completed event.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, deviceID string, totalItems int, total float64, linkURL string) error {
	data := CheckoutCompletedData{
		DeviceID:   deviceID,
		TotalItems: totalItems,
		Total:      total,
		LinkURL:    linkURL,
	}

	event, err := pkgkafka.NewEvent(TopicCheckoutCompleted, deviceID, AggregateTypeCheckout, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create checkout.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutCompleted, event); err != nil {
		return fmt.Errorf("publish checkout.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.completed event",
		slog.String("device_id", deviceID),
		slog.Float64("total", total),
	)

	return nil
}

// PublishProductCreated publishes a produto.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publishProduct(ctx, TopicProductCreated, product)
}

// PublishProductUpdated publishes a produto.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publishProduct(ctx, TopicProductUpdated, product)
}

func (p *Producer) publishProduct(ctx context.Context, topic string, product *domain.Product) error {
	data := ProductData{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Active:    product.Active,
	}

	event, err := pkgkafka.NewEvent(topic, fmt.Sprintf("%d", product.ID), AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("topic", topic),
		slog.Int64("product_id", product.ID),
	)

	return nil
}

// PublishProductDeleted publishes a produto.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID int64) error {
	data := ProductDeletedData{ProductID: productID}

	event, err := pkgkafka.NewEvent(TopicProductDeleted, fmt.Sprintf("%d", productID), AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create produto.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish produto.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published produto.deleted event",
		slog.Int64("product_id", productID),
	)

	return nil
}
