package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/repository"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	apperrors "github.com/FilipeCampos25/SiteClienteLucas/pkg/errors"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httputil"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/pagination"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/validator"
)

// maxImageUploadBytes bounds multipart product uploads.
const maxImageUploadBytes = 10 << 20

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"nome" validate:"required,min=1,max=120"`
	Description string  `json:"descricao"`
	Price       float64 `json:"valor" validate:"gte=0"`
	ImageURL    string  `json:"imagem_url" validate:"omitempty,url"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string  `json:"nome" validate:"omitempty,min=1,max=120"`
	Description *string  `json:"descricao"`
	Price       *float64 `json:"valor" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"imagem_url" validate:"omitempty,url"`
	Active      *bool    `json:"ativo"`
}

// catalogEntry is the legacy catalog feed shape consumed by browser clients
// and by peer catalog caches.
type catalogEntry struct {
	ID     int64   `json:"id"`
	Name   string  `json:"nome"`
	Price  float64 `json:"valor"`
	Image  string  `json:"imagem"`
	Active bool    `json:"ativo"`
}

func newCatalogEntry(p domain.Product) catalogEntry {
	return catalogEntry{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Image:  p.DisplayImageURL(),
		Active: p.Active,
	}
}

// pagedCatalogResponse wraps a catalog page with the compact pager model the
// storefront home renders.
type pagedCatalogResponse struct {
	httputil.PaginatedResponse[catalogEntry]
	Pages []pagination.PageItem `json:"pages"`
}

// ListProducts handles GET /api/produtos. Without a page parameter the
// response is the bare legacy JSON array; with one it is the paginated
// envelope.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	paged := r.URL.Query().Get("page") != ""

	filter := repository.ProductFilter{ActiveOnly: true}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filter.Search = &q
	}

	if paged {
		params := pagination.FromRequest(r)
		filter.Page = params.Page
		filter.PerPage = params.PerPage
	} else {
		// The legacy feed is the whole active catalog in one response.
		filter.Page = 1
		filter.PerPage = 1000
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	entries := make([]catalogEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, newCatalogEntry(p))
	}

	if !paged {
		httputil.WriteJSON(w, http.StatusOK, entries)
		return
	}

	totalPages := total / filter.PerPage
	if total%filter.PerPage > 0 {
		totalPages++
	}
	httputil.WriteJSON(w, http.StatusOK, pagedCatalogResponse{
		PaginatedResponse: httputil.NewPaginatedResponse(entries, total, filter.Page, filter.PerPage),
		Pages:             pagination.Compact(filter.Page, totalPages),
	})
}

// CreateProduct handles POST /admin/produtos. The body is either JSON or a
// multipart form with an optional image file, matching the admin UI.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	var upload *service.ImageUpload

	if isMultipart(r) {
		form, up, err := h.parseProductForm(r)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		req = CreateProductRequest{
			Name:        form.name,
			Description: form.description,
			Price:       form.price,
			ImageURL:    form.imageURL,
		}
		upload = up
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}, upload)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /admin/produtos/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	var upload *service.ImageUpload

	if isMultipart(r) {
		form, up, err := h.parseProductForm(r)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		req = form.toUpdateRequest(r)
		upload = up
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	}, upload)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /admin/produtos/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// GetImage handles GET /media/produto/{id}. Stored bytes are served with the
// upload-time SHA-256 as a strong ETag so revisits revalidate to 304.
func (h *ProductHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	img, err := h.service.GetProductImage(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	etag := `"` + img.SHA256 + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", img.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Bytes)
}

// --- multipart helpers ---

type productForm struct {
	name        string
	description string
	price       float64
	imageURL    string
}

func (f productForm) toUpdateRequest(r *http.Request) UpdateProductRequest {
	var req UpdateProductRequest
	// Only fields present in the form become updates.
	if _, ok := r.MultipartForm.Value["nome"]; ok {
		req.Name = &f.name
	}
	if _, ok := r.MultipartForm.Value["descricao"]; ok {
		req.Description = &f.description
	}
	if _, ok := r.MultipartForm.Value["valor"]; ok {
		req.Price = &f.price
	}
	if _, ok := r.MultipartForm.Value["imagem_url"]; ok {
		req.ImageURL = &f.imageURL
	}
	if v, ok := r.MultipartForm.Value["ativo"]; ok && len(v) > 0 {
		active := v[0] == "true" || v[0] == "1"
		req.Active = &active
	}
	return req
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseProductForm reads the admin form fields and the optional image file.
func (h *ProductHandler) parseProductForm(r *http.Request) (productForm, *service.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		return productForm{}, nil, apperrors.InvalidInput("invalid multipart form: " + err.Error())
	}

	form := productForm{
		name:        strings.TrimSpace(r.FormValue("nome")),
		description: strings.TrimSpace(r.FormValue("descricao")),
		imageURL:    strings.TrimSpace(r.FormValue("imagem_url")),
	}

	if raw := strings.TrimSpace(r.FormValue("valor")); raw != "" {
		// The admin form historically posts comma decimals.
		price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return productForm{}, nil, apperrors.InvalidInput("invalid price: " + raw)
		}
		form.price = price
	}

	file, header, err := r.FormFile("imagem")
	if err == http.ErrMissingFile {
		return form, nil, nil
	}
	if err != nil {
		return productForm{}, nil, apperrors.InvalidInput("invalid image upload: " + err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes+1))
	if err != nil {
		return productForm{}, nil, apperrors.InvalidInput("read image upload: " + err.Error())
	}
	if len(data) > maxImageUploadBytes {
		return productForm{}, nil, apperrors.InvalidInput("image upload exceeds 10MB")
	}

	return form, &service.ImageUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
