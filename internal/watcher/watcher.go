// Package watcher samples the persisted cart store on a fixed interval and
// exports the aggregates as gauges. The figures have bounded staleness; they
// refresh independently of user actions.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
)

var (
	activeCarts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_active_carts",
		Help: "Number of non-empty carts in the store.",
	})
	cartItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_items",
		Help: "Total item quantity across all non-empty carts.",
	})
)

// DefaultInterval is used when no sampling interval is configured.
const DefaultInterval = 30 * time.Second

// Watcher periodically reads cart store statistics.
type Watcher struct {
	store    repository.CartStore
	interval time.Duration
	logger   *slog.Logger
}

// New creates a watcher sampling at the given interval.
func New(store repository.CartStore, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run samples the store until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sample(ctx)
		}
	}
}

// sample reads the aggregates and updates the gauges. A failed read keeps
// the previous gauge values.
func (w *Watcher) sample(ctx context.Context) {
	stats, err := w.store.Stats(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "cart stats sample failed",
			slog.String("error", err.Error()),
		)
		return
	}

	activeCarts.Set(float64(stats.Carts))
	cartItems.Set(float64(stats.Items))

	w.logger.DebugContext(ctx, "cart stats sampled",
		slog.Int("carts", stats.Carts),
		slog.Int("items", stats.Items),
	)
}
