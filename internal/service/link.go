package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPLinkService generates checkout links through a remote HTTP service. It
// posts the ordered line array to the configured URL and expects a JSON body
// with the link under "url".
type HTTPLinkService struct {
	client HTTPDoer
	url    string
}

// NewHTTPLinkService creates a link service client for the given endpoint.
func NewHTTPLinkService(client HTTPDoer, url string) *HTTPLinkService {
	return &HTTPLinkService{client: client, url: url}
}

// Generate implements LinkService over HTTP.
func (s *HTTPLinkService) Generate(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	type linkResponse struct {
		URL string `json:"url"`
	}

	if lines == nil {
		lines = []domain.CheckoutLine{}
	}
	body, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call link service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpclient.ParseResponseError(resp, "link")
	}

	var linkResp linkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return "", fmt.Errorf("decode link response: %w", err)
	}
	if linkResp.URL == "" {
		return "", errors.New("link service returned an empty url")
	}

	return linkResp.URL, nil
}
