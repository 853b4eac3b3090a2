package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/event"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
	redisrepo "github.com/FilipeCampos25/SiteClienteLucas/internal/repository/redis"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/whatsapp"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/health"
	pkgkafka "github.com/FilipeCampos25/SiteClienteLucas/pkg/kafka"
)

const (
	testDevice    = "dev-1"
	testAdminUser = "admin"
	testAdminPass = "s3cret"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer() *event.Producer {
	logger := newTestLogger()
	// No broker listens on this address; publish failures are log-only.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

// --- Mock product repository ---

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product, img *domain.ProductImage) error {
	args := m.Called(ctx, p, img)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product, img *domain.ProductImage) error {
	args := m.Called(ctx, p, img)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepo) GetImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductImage), args.Error(1)
}

// --- Stub catalog source & link service ---

type stubCatalogSource struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
}

func (s *stubCatalogSource) Fetch(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products, s.err
}

type stubLinkService struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (s *stubLinkService) Generate(_ context.Context, _ []domain.CheckoutLine) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

// --- Harness ---

// harness runs the production-shaped router over a miniredis cart store and
// a mocked product repository.
type harness struct {
	router http.Handler
	redis  *miniredis.Miniredis
	repo   *mockProductRepo
	links  service.LinkService
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	links  service.LinkService
	source service.CatalogSource
}

func withLinks(links service.LinkService) harnessOption {
	return func(c *harnessConfig) { c.links = links }
}

func withCatalog(source service.CatalogSource) harnessOption {
	return func(c *harnessConfig) { c.source = source }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	hc := harnessConfig{
		links:  whatsapp.NewBuilder("5511999999999"),
		source: &stubCatalogSource{},
	}
	for _, opt := range opts {
		opt(&hc)
	}

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := newTestLogger()
	producer := newTestProducer()

	store := redisrepo.NewCartStore(client, 0, logger)
	repo := new(mockProductRepo)

	carts := service.NewCartService(store, producer, logger)
	products := service.NewProductService(repo, producer, logger)
	catalog := service.NewCatalogCache(hc.source, logger)
	checkout := service.NewCheckoutService(carts, catalog, hc.links, producer, logger)

	router := NewRouter(RouterConfig{
		Carts:              carts,
		Checkout:           checkout,
		Products:           products,
		Links:              hc.links,
		Health:             health.NewHandler(),
		Logger:             logger,
		AdminUser:          testAdminUser,
		AdminPassword:      testAdminPass,
		CORSAllowedOrigins: []string{"*"},
		PprofAllowedCIDRs:  []string{"127.0.0.1/32"},
	})

	return &harness{
		router: router,
		redis:  mr,
		repo:   repo,
		links:  hc.links,
	}
}

// do executes a request against the router as the fixed test device.
func (h *harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Device-ID", testDevice)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body into dst.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// envelope mirrors the standard response wrapper with a raw data payload.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	decode(t, rec, &env)
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Data, "expected data in response: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
