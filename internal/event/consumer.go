package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgkafka "github.com/FilipeCampos25/SiteClienteLucas/pkg/kafka"
)

// Consumer group ID for the storefront's own activity feed.
const ConsumerGroupID = "storefront-activity"

var cartActivityTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_activity_total",
		Help: "Cart and checkout activity events consumed, by event kind.",
	},
	[]string{"event"},
)

// ConsumerHandler routes incoming Kafka events to the appropriate handler.
type ConsumerHandler struct {
	logger *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		logger: logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicCartUpdated:
		return h.handleCartUpdated(ctx, event)
	case TopicCartCleared:
		return h.handleCartCleared(ctx, event)
	case TopicCheckoutCompleted:
		return h.handleCheckoutCompleted(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleCartUpdated tallies cart update activity.
func (h *ConsumerHandler) handleCartUpdated(ctx context.Context, event *pkgkafka.Event) error {
	var data CartUpdatedData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode carrinho.updated event",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	cartActivityTotal.WithLabelValues("updated").Inc()

	h.logger.InfoContext(ctx, "cart updated",
		slog.String("device_id", data.DeviceID),
		slog.Int("total_items", data.TotalItems),
		slog.Float64("total", data.Total),
	)
	return nil
}

// handleCartCleared tallies cart clear activity.
func (h *ConsumerHandler) handleCartCleared(ctx context.Context, event *pkgkafka.Event) error {
	cartActivityTotal.WithLabelValues("cleared").Inc()

	h.logger.InfoContext(ctx, "cart cleared",
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// handleCheckoutCompleted tallies completed checkouts.
func (h *ConsumerHandler) handleCheckoutCompleted(ctx context.Context, event *pkgkafka.Event) error {
	var data CheckoutCompletedData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode checkout.completed event",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	cartActivityTotal.WithLabelValues("checkout").Inc()

	h.logger.InfoContext(ctx, "checkout completed",
		slog.String("device_id", data.DeviceID),
		slog.Float64("total", data.Total),
		slog.String("link_url", data.LinkURL),
	)
	return nil
}

// NewConsumers creates Kafka consumers for the activity topics. Handlers are
// wrapped for at-least-once delivery: replayed event IDs are dropped by the
// shared idempotency store.
func NewConsumers(brokers []string, handler *ConsumerHandler, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		TopicCartUpdated,
		TopicCartCleared,
		TopicCheckoutCompleted,
	}

	store := pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
	handle := pkgkafka.IdempotentHandler(store, handler.Handle, logger)

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))

	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}

		consumer := pkgkafka.NewConsumer(cfg, handle, logger)
		consumers = append(consumers, consumer)
	}

	return consumers
}
