package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httputil"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
// Name and price are the client's catalog snapshot; both are optional.
type AddItemRequest struct {
	ProductID int64    `json:"id" validate:"required,gte=1"`
	Name      string   `json:"nome" validate:"omitempty,max=500"`
	UnitPrice *float64 `json:"valor" validate:"omitempty,gte=0"`
}

// CartResponse is the cart body returned by the cart endpoints: the lines in
// stored order plus the badge count.
type CartResponse struct {
	Items      domain.Cart `json:"itens"`
	TotalItems int         `json:"total_itens"`
}

func newCartResponse(cart domain.Cart) CartResponse {
	if cart == nil {
		cart = domain.Cart{}
	}
	return CartResponse{Items: cart, TotalItems: cart.TotalItems()}
}

// GetCart handles GET /api/carrinho
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "device identity is required"},
		})
		return
	}

	cart, err := h.service.GetCart(r.Context(), deviceID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(cart)})
}

// AddItem handles POST /api/carrinho/itens
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "device identity is required"},
		})
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), deviceID, service.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(cart)})
}

// RemoveItem handles DELETE /api/carrinho/itens/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "device identity is required"},
		})
		return
	}

	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), deviceID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(cart)})
}

// ClearCart handles DELETE /api/carrinho
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "device identity is required"},
		})
		return
	}

	if err := h.service.ClearCart(r.Context(), deviceID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(nil)})
}
