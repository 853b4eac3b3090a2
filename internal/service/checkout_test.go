package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	apperrors "github.com/FilipeCampos25/SiteClienteLucas/pkg/errors"
)

// --- Stub Link Services ---

type stubLinkService struct {
	mu      sync.Mutex
	url     string
	err     error
	calls   int
	payload []domain.CheckoutLine
}

func (s *stubLinkService) Generate(_ context.Context, lines []domain.CheckoutLine) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.payload = lines
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *stubLinkService) generateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingLinkService holds Generate open until released, so a second
// submission can be fired while the first is in flight.
type blockingLinkService struct {
	started chan struct{}
	release chan struct{}
	url     string
}

func (s *blockingLinkService) Generate(_ context.Context, _ []domain.CheckoutLine) (string, error) {
	close(s.started)
	<-s.release
	return s.url, nil
}

// --- Test Helpers ---

func newTestCheckoutService(store *mockCartStore, source CatalogSource, links LinkService) *CheckoutService {
	logger := newTestLogger()
	carts := NewCartService(store, newTestProducer(), logger)
	catalog := NewCatalogCache(source, logger)
	return NewCheckoutService(carts, catalog, links, newTestProducer(), logger)
}

func unavailableCatalog() *stubCatalogSource {
	source := &stubCatalogSource{}
	source.setFeed(nil, errors.New("feed unreachable"))
	return source
}

// --- Compose ---

func TestCompose_EmptyCart(t *testing.T) {
	store := new(mockCartStore)
	svc := newTestCheckoutService(store, &stubCatalogSource{products: catalogProducts()}, &stubLinkService{})
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(domain.Cart{}, nil)

	summary, err := svc.Compose(ctx, "device-1")

	require.NoError(t, err)
	assert.True(t, summary.Empty)
	assert.Empty(t, summary.Lines)
	assert.Empty(t, summary.Payload)
	assert.Zero(t, summary.Total)

	store.AssertExpectations(t)
}

func TestCompose_DenormalizedSnapshot(t *testing.T) {
	store := new(mockCartStore)
	svc := newTestCheckoutService(store, unavailableCatalog(), &stubLinkService{})
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(twoLineCart(), nil)

	summary, err := svc.Compose(ctx, "device-1")

	require.NoError(t, err)
	assert.False(t, summary.Empty)
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, SummaryLine{Name: "Cantoneira 20mm", Quantity: 2, UnitPrice: 12.5, LineTotal: 25}, summary.Lines[0])
	assert.Equal(t, SummaryLine{Name: "Rodapé Branco", Quantity: 1, UnitPrice: 8.4, LineTotal: 8.4}, summary.Lines[1])
	assert.InDelta(t, 33.4, summary.Total, 1e-9)
	require.Len(t, summary.Payload, 2)
	assert.Equal(t, domain.CheckoutLine{Name: "Cantoneira 20mm", Quantity: 2, UnitPrice: 12.5}, summary.Payload[0])

	store.AssertExpectations(t)
}

func TestCompose_CatalogFallback(t *testing.T) {
	store := new(mockCartStore)
	source := &stubCatalogSource{products: []domain.Product{
		{ID: 5, Name: "Cantoneira Inox", Price: 10, Active: true},
	}}
	svc := newTestCheckoutService(store, source, &stubLinkService{})
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(domain.Cart{{ID: 5, Quantity: 2}}, nil)

	summary, err := svc.Compose(ctx, "device-1")

	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Cantoneira Inox", summary.Lines[0].Name)
	assert.Equal(t, float64(10), summary.Lines[0].UnitPrice)
	assert.Equal(t, float64(20), summary.Lines[0].LineTotal)
	assert.Equal(t, float64(20), summary.Total)

	store.AssertExpectations(t)
}

func TestCompose_PlaceholderWhenUnknown(t *testing.T) {
	store := new(mockCartStore)
	svc := newTestCheckoutService(store, unavailableCatalog(), &stubLinkService{})
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(domain.Cart{{ID: 999, Quantity: 1}}, nil)

	summary, err := svc.Compose(ctx, "device-1")

	require.NoError(t, err)
	assert.False(t, summary.Empty)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Product #999", summary.Lines[0].Name)
	assert.Zero(t, summary.Lines[0].UnitPrice)
	assert.Zero(t, summary.Total)

	store.AssertExpectations(t)
}

func TestCompose_PriceFromCatalogKeepsClientName(t *testing.T) {
	store := new(mockCartStore)
	source := &stubCatalogSource{products: []domain.Product{
		{ID: 5, Name: "Nome do Catálogo", Price: 10, Active: true},
	}}
	svc := newTestCheckoutService(store, source, &stubLinkService{})
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(domain.Cart{{ID: 5, Quantity: 1, Name: "Nome do Cliente"}}, nil)

	summary, err := svc.Compose(ctx, "device-1")

	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Nome do Cliente", summary.Lines[0].Name)
	assert.Equal(t, float64(10), summary.Lines[0].UnitPrice)

	store.AssertExpectations(t)
}

func TestCompose_ZeroQuantityLineKept(t *testing.T) {
	store := new(mockCartStore)
	svc := newTestCheckoutService(store, unavailableCatalog(), &stubLinkService{})
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(domain.Cart{{ID: 10, Quantity: 0, Name: "Cantoneira 20mm", UnitPrice: 12.5}}, nil)

	summary, err := svc.Compose(ctx, "device-1")

	require.NoError(t, err)
	assert.False(t, summary.Empty)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 0, summary.Lines[0].Quantity)
	assert.Zero(t, summary.Lines[0].LineTotal)
	assert.Zero(t, summary.Total)

	store.AssertExpectations(t)
}

func TestCompose_EmptyDeviceID(t *testing.T) {
	store := new(mockCartStore)
	svc := newTestCheckoutService(store, &stubCatalogSource{}, &stubLinkService{})

	summary, err := svc.Compose(context.Background(), "")

	assert.Nil(t, summary)
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- Submit ---

func TestSubmit_Success(t *testing.T) {
	store := new(mockCartStore)
	links := &stubLinkService{url: "https://wa.me/5511999999999?text=pedido"}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(twoLineCart(), nil)
	store.On("Clear", ctx, "device-1").Return(nil)

	result, err := svc.Submit(ctx, "device-1")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "https://wa.me/5511999999999?text=pedido", result.URL)
	assert.Equal(t, domain.CheckoutStateCompleted, result.State)
	require.Len(t, links.payload, 2)
	assert.Equal(t, "Cantoneira 20mm", links.payload[0].Name)
	assert.Equal(t, 2, links.payload[0].Quantity)

	store.AssertExpectations(t)
}

func TestSubmit_LinkFailureKeepsCart(t *testing.T) {
	store := new(mockCartStore)
	links := &stubLinkService{err: errors.New("serviço de link indisponível")}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(twoLineCart(), nil)

	result, err := svc.Submit(ctx, "device-1")

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.CheckoutStateFailed, result.State)
	assert.Empty(t, result.URL)
	store.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)

	store.AssertExpectations(t)
}

func TestSubmit_EmptyCart(t *testing.T) {
	store := new(mockCartStore)
	links := &stubLinkService{url: "https://wa.me/5511999999999"}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(domain.Cart{}, nil)

	result, err := svc.Submit(ctx, "device-1")

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 0, links.generateCalls())

	store.AssertExpectations(t)
}

func TestSubmit_ClearFailureStillReturnsLink(t *testing.T) {
	store := new(mockCartStore)
	links := &stubLinkService{url: "https://wa.me/5511999999999?text=pedido"}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(twoLineCart(), nil)
	store.On("Clear", ctx, "device-1").Return(errors.New("redis down"))

	result, err := svc.Submit(ctx, "device-1")

	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511999999999?text=pedido", result.URL)
	assert.Equal(t, domain.CheckoutStateCompleted, result.State)

	store.AssertExpectations(t)
}

func TestSubmit_ConcurrentSubmitConflicts(t *testing.T) {
	store := new(mockCartStore)
	links := &blockingLinkService{
		started: make(chan struct{}),
		release: make(chan struct{}),
		url:     "https://wa.me/5511999999999",
	}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(twoLineCart(), nil)
	store.On("Clear", ctx, "device-1").Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, "device-1")
		done <- err
	}()

	<-links.started

	result, err := svc.Submit(ctx, "device-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	close(links.release)
	require.NoError(t, <-done)

	store.AssertExpectations(t)
}

func TestSubmit_SecondDeviceUnaffected(t *testing.T) {
	store := new(mockCartStore)
	links := &blockingLinkService{
		started: make(chan struct{}),
		release: make(chan struct{}),
		url:     "https://wa.me/5511999999999",
	}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, mock.AnythingOfType("string")).Return(twoLineCart(), nil)
	store.On("Clear", ctx, mock.AnythingOfType("string")).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, "device-1")
		done <- err
	}()

	<-links.started

	// A different device is not blocked by device-1's submission.
	acquired := svc.acquire("device-2")
	assert.True(t, acquired)
	svc.release("device-2")

	close(links.release)
	require.NoError(t, <-done)
}

func TestSubmit_EmptyDeviceID(t *testing.T) {
	store := new(mockCartStore)
	svc := newTestCheckoutService(store, &stubCatalogSource{}, &stubLinkService{})

	result, err := svc.Submit(context.Background(), "")

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmit_GuardReleasedAfterFailure(t *testing.T) {
	store := new(mockCartStore)
	links := &stubLinkService{err: errors.New("serviço de link indisponível")}
	svc := newTestCheckoutService(store, unavailableCatalog(), links)
	ctx := context.Background()

	store.On("Read", ctx, "device-1").Return(twoLineCart(), nil)

	_, err := svc.Submit(ctx, "device-1")
	require.Error(t, err)

	// The guard must not leak; the device can retry immediately.
	_, err = svc.Submit(ctx, "device-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 2, links.generateCalls())

	store.AssertExpectations(t)
}
