package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
)

var catalogLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_loads_total",
		Help: "Catalog cache load attempts by result.",
	},
	[]string{"result"},
)

// CatalogSource fetches the full product collection for the cache.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// CatalogCache holds the product collection in memory for checkout name and
// price resolution. It fills at most once: after a load yields products,
// later Load calls are no-ops. While empty (never loaded, failed, or the
// source returned nothing) each Load call tries again.
type CatalogCache struct {
	source CatalogSource
	logger *slog.Logger

	loadMu sync.Mutex

	mu       sync.RWMutex
	products map[int64]domain.Product
}

// NewCatalogCache creates an empty catalog cache over the given source.
func NewCatalogCache(source CatalogSource, logger *slog.Logger) *CatalogCache {
	return &CatalogCache{
		source: source,
		logger: logger,
	}
}

// Load populates the cache from the source. Failures are logged and counted
// but never returned: lookups degrade to denormalized cart data and
// placeholders, which is the intended behavior when the catalog is down.
// Concurrent loads collapse into one fetch.
func (c *CatalogCache) Load(ctx context.Context) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.Loaded() {
		return
	}

	products, err := c.source.Fetch(ctx)
	if err != nil {
		catalogLoadsTotal.WithLabelValues("failure").Inc()
		c.logger.WarnContext(ctx, "catalog load failed, lookups will degrade",
			slog.String("error", err.Error()),
		)
		return
	}

	if len(products) == 0 {
		catalogLoadsTotal.WithLabelValues("empty").Inc()
		c.logger.WarnContext(ctx, "catalog source returned no products")
		return
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.products = byID
	c.mu.Unlock()

	catalogLoadsTotal.WithLabelValues("success").Inc()
	c.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("products", len(byID)),
	)
}

// Lookup returns the cached product for an ID.
func (c *CatalogCache) Lookup(id int64) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	return p, ok
}

// Loaded reports whether the cache holds a product collection.
func (c *CatalogCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.products) > 0
}

// Len returns the number of cached products.
func (c *CatalogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.products)
}

// HTTPCatalogSource fetches the catalog feed over HTTP. It points at the
// public catalog endpoint, in production our own /api/produtos.
type HTTPCatalogSource struct {
	client HTTPGetter
	url    string
}

// HTTPGetter is the interface for executing HTTP GETs.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPGetter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// NewHTTPCatalogSource creates a catalog source reading from url.
func NewHTTPCatalogSource(client HTTPGetter, url string) *HTTPCatalogSource {
	return &HTTPCatalogSource{
		client: client,
		url:    url,
	}
}

// Fetch retrieves and decodes the catalog feed.
func (s *HTTPCatalogSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}

	products, err := domain.ParseCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog response: %w", err)
	}

	return products, nil
}
