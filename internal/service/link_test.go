package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httpclient"
)

func newLinkClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
}

func TestHTTPLinkService_PostsOrderedLineArray(t *testing.T) {
	var received []domain.CheckoutLine
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url": "https://wa.me/5511999999999?text=pedido"}`))
	}))
	defer server.Close()

	svc := NewHTTPLinkService(newLinkClient(), server.URL)

	url, err := svc.Generate(context.Background(), []domain.CheckoutLine{
		{Name: "Cantoneira 20mm", Quantity: 2, UnitPrice: 18.90},
		{Name: "Rodapé Branco", Quantity: 1, UnitPrice: 34.50},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511999999999?text=pedido", url)

	require.Len(t, received, 2)
	assert.Equal(t, "Cantoneira 20mm", received[0].Name)
	assert.Equal(t, 2, received[0].Quantity)
	assert.Equal(t, 18.90, received[0].UnitPrice)
	assert.Equal(t, "Rodapé Branco", received[1].Name)
}

func TestHTTPLinkService_NilPayloadSendsEmptyArray(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		raw = string(buf[:n])
		_, _ = w.Write([]byte(`{"url": "https://wa.me/5511999999999"}`))
	}))
	defer server.Close()

	svc := NewHTTPLinkService(newLinkClient(), server.URL)

	url, err := svc.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511999999999", url)
	assert.Equal(t, "[]", raw)
}

func TestHTTPLinkService_Non2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "boom"}`))
	}))
	defer server.Close()

	svc := NewHTTPLinkService(newLinkClient(), server.URL)

	_, err := svc.Generate(context.Background(), []domain.CheckoutLine{{Name: "X", Quantity: 1, UnitPrice: 1}})
	require.Error(t, err)
}

func TestHTTPLinkService_EmptyURLIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url": ""}`))
	}))
	defer server.Close()

	svc := NewHTTPLinkService(newLinkClient(), server.URL)

	_, err := svc.Generate(context.Background(), []domain.CheckoutLine{{Name: "X", Quantity: 1, UnitPrice: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty url")
}
