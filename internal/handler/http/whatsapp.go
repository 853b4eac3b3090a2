package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httputil"
)

// WhatsAppHandler exposes stateless link generation. It is the endpoint a
// remote LINK_SERVICE_URL points at, so request and response bodies stay in
// the legacy wire shape: an ordered line array in, {"url": "..."} out, with
// no envelope.
type WhatsAppHandler struct {
	links  service.LinkService
	logger *slog.Logger
}

// NewWhatsAppHandler creates a new WhatsApp link HTTP handler.
func NewWhatsAppHandler(links service.LinkService, logger *slog.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		links:  links,
		logger: logger,
	}
}

// LinkRequest is the wrapped JSON request body older frontends still send.
type LinkRequest struct {
	Items []domain.CheckoutLine `json:"itens"`
}

// GenerateLink handles POST /api/whatsapp. The canonical body is the bare
// ordered line array; the wrapped {"itens": [...]} form is also accepted.
func (h *WhatsAppHandler) GenerateLink(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"detail": "invalid request body: " + err.Error(),
		})
		return
	}

	var lines []domain.CheckoutLine
	if err := json.Unmarshal(body, &lines); err != nil {
		var wrapped LinkRequest
		if err := json.Unmarshal(body, &wrapped); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"detail": "invalid request body: " + err.Error(),
			})
			return
		}
		lines = wrapped.Items
	}

	url, err := h.links.Generate(r.Context(), lines)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "link generation failed",
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusBadGateway, map[string]string{
			"detail": "link generation failed",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}
