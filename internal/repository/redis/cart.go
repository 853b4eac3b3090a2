package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
)

const keyPrefix = "carrinho:"

// emptyCart is the canonical serialization of an empty cart. Clearing and
// self-healing both write it rather than deleting the key, matching what the
// browser clients have always stored.
const emptyCart = "[]"

// CartStore implements repository.CartStore using Redis. Records are the raw
// legacy JSON arrays the clients produced, stored whole under one key per
// device.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCartStore creates a new Redis-backed cart store. A zero ttl keeps
// records forever.
func NewCartStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CartStore {
	return &CartStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Read retrieves the cart for a device. A missing key yields an empty cart.
// A record that does not decode as an array of items is reset to "[]" so the
// corruption cannot resurface, and the read still succeeds empty. Only a
// Redis failure is returned as an error.
func (s *CartStore) Read(ctx context.Context, deviceID string) (domain.Cart, error) {
	key := keyPrefix + deviceID

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.Cart{}, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil || cart == nil {
		s.logger.WarnContext(ctx, "cart record malformed, resetting",
			slog.String("device_id", deviceID),
		)
		if resetErr := s.client.Set(ctx, key, emptyCart, s.ttl).Err(); resetErr != nil {
			s.logger.ErrorContext(ctx, "failed to reset malformed cart",
				slog.String("device_id", deviceID),
				slog.String("error", resetErr.Error()),
			)
		}
		return domain.Cart{}, nil
	}

	return cart.Normalize(), nil
}

// Write persists the full cart for a device, replacing any previous record.
func (s *CartStore) Write(ctx context.Context, deviceID string, cart domain.Cart) error {
	key := keyPrefix + deviceID

	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart.Normalize())
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Clear resets the cart for a device to the empty record.
func (s *CartStore) Clear(ctx context.Context, deviceID string) error {
	key := keyPrefix + deviceID

	if err := s.client.Set(ctx, key, emptyCart, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis clear cart: %w", err)
	}

	return nil
}

// Stats scans all cart keys and aggregates non-empty carts and their item
// counts. Records that fail to decode are skipped; Stats never heals them,
// that is Read's job.
func (s *CartStore) Stats(ctx context.Context) (repository.CartStats, error) {
	var stats repository.CartStats

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var cart domain.Cart
		if err := json.Unmarshal(data, &cart); err != nil || len(cart) == 0 {
			continue
		}
		stats.Carts++
		stats.Items += cart.Normalize().TotalItems()
	}
	if err := iter.Err(); err != nil {
		return repository.CartStats{}, fmt.Errorf("redis scan carts: %w", err)
	}

	return stats, nil
}
