package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/event"
	apperrors "github.com/FilipeCampos25/SiteClienteLucas/pkg/errors"
)

var checkoutAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout submissions by terminal state.",
	},
	[]string{"state"},
)

// SummaryLine is one resolved line of a checkout summary.
type SummaryLine struct {
	Name      string  `json:"nome"`
	Quantity  int     `json:"quantidade"`
	UnitPrice float64 `json:"valor_unitario"`
	LineTotal float64 `json:"subtotal"`
}

// Summary is the composed view of a cart ready for checkout. Payload carries
// the same lines in wire form for the link-generation service.
type Summary struct {
	Empty   bool
	Lines   []SummaryLine
	Total   float64
	Payload []domain.CheckoutLine
}

// Result is the outcome of a checkout submission.
type Result struct {
	URL   string
	State string
}

// LinkService turns a checkout payload into a navigable URL.
type LinkService interface {
	Generate(ctx context.Context, lines []domain.CheckoutLine) (string, error)
}

// CheckoutService composes carts into checkout payloads and submits them to
// the link-generation service. One submission per device may be in flight at
// a time; the cart is cleared only after the link service confirms success.
type CheckoutService struct {
	carts    *CartService
	catalog  *CatalogCache
	links    LinkService
	producer *event.Producer
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts *CartService, catalog *CatalogCache, links LinkService, producer *event.Producer, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		catalog:  catalog,
		links:    links,
		producer: producer,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Compose resolves the device's cart into a checkout summary. Each line's
// name and price come from the denormalized cart fields when present, then
// the catalog cache, then the placeholder with price zero. Composition never
// blocks on catalog availability.
func (s *CheckoutService) Compose(ctx context.Context, deviceID string) (*Summary, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}

	s.catalog.Load(ctx)

	cart, err := s.carts.GetCart(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("compose checkout: %w", err)
	}

	if len(cart) == 0 {
		return &Summary{Empty: true, Lines: []SummaryLine{}, Payload: []domain.CheckoutLine{}}, nil
	}

	summary := &Summary{
		Lines:   make([]SummaryLine, 0, len(cart)),
		Payload: make([]domain.CheckoutLine, 0, len(cart)),
	}

	for _, li := range cart {
		name := li.Name
		price := li.UnitPrice

		if name == "" || price == 0 {
			if p, ok := s.catalog.Lookup(li.ID); ok {
				if name == "" {
					name = p.Name
				}
				if price == 0 {
					price = p.Price
				}
			}
		}
		if name == "" {
			name = domain.PlaceholderName(li.ID)
		}

		lineTotal := float64(li.Quantity) * price
		summary.Lines = append(summary.Lines, SummaryLine{
			Name:      name,
			Quantity:  li.Quantity,
			UnitPrice: price,
			LineTotal: lineTotal,
		})
		summary.Payload = append(summary.Payload, domain.CheckoutLine{
			Name:      name,
			Quantity:  li.Quantity,
			UnitPrice: price,
		})
		summary.Total += lineTotal
	}

	return summary, nil
}

// Submit composes a fresh payload and sends it to the link service. The cart
// is cleared only after a link comes back; any failure leaves it intact so
// the submission can be retried.
func (s *CheckoutService) Submit(ctx context.Context, deviceID string) (*Result, error) {
	if deviceID == "" {
		return nil, apperrors.InvalidInput("device id is required")
	}

	if !s.acquire(deviceID) {
		return nil, apperrors.Conflict("checkout already in progress")
	}
	defer s.release(deviceID)

	summary, err := s.Compose(ctx, deviceID)
	if err != nil {
		checkoutAttemptsTotal.WithLabelValues(domain.CheckoutStateFailed).Inc()
		return &Result{State: domain.CheckoutStateFailed}, err
	}

	if summary.Empty {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	url, err := s.links.Generate(ctx, summary.Payload)
	if err != nil {
		checkoutAttemptsTotal.WithLabelValues(domain.CheckoutStateFailed).Inc()
		s.logger.ErrorContext(ctx, "checkout link generation failed, cart kept",
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
		return &Result{State: domain.CheckoutStateFailed}, fmt.Errorf("generate checkout link: %w", err)
	}

	// Confirmed success: only now may the cart be emptied.
	if err := s.carts.ClearCart(ctx, deviceID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishCheckoutCompleted(ctx, deviceID, totalQuantity(summary.Lines), summary.Total, url); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
	}

	checkoutAttemptsTotal.WithLabelValues(domain.CheckoutStateCompleted).Inc()
	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("device_id", deviceID),
		slog.Float64("total", summary.Total),
	)

	return &Result{URL: url, State: domain.CheckoutStateCompleted}, nil
}

func totalQuantity(lines []SummaryLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

func (s *CheckoutService) acquire(deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[deviceID]; busy {
		return false
	}
	s.inFlight[deviceID] = struct{}{}
	return true
}

func (s *CheckoutService) release(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, deviceID)
}
