package http

import (
	"log/slog"
	"net/http"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httputil"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// SummaryResponse is the rendering model for the checkout summary. Vazio
// distinguishes "nothing to show" from a cart of zero-cost items.
type SummaryResponse struct {
	Empty bool                  `json:"vazio"`
	Items []service.SummaryLine `json:"itens"`
	Total float64               `json:"total"`
}

// CheckoutResponse carries the navigable link of a completed checkout.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// GetSummary handles GET /api/carrinho/resumo
func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "device identity is required"},
		})
		return
	}

	summary, err := h.service.Compose(r.Context(), deviceID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: SummaryResponse{
		Empty: summary.Empty,
		Items: summary.Lines,
		Total: summary.Total,
	}})
}

// Submit handles POST /api/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "device identity is required"},
		})
		return
	}

	result, err := h.service.Submit(r.Context(), deviceID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CheckoutResponse{URL: result.URL}})
}
