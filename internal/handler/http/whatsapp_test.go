package http

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLink_BuildsPrefilledLink(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/whatsapp",
		`{"itens": [{"nome": "Cantoneira 20mm", "quantidade": 2, "valor_unitario": 18.90}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		URL string `json:"url"`
	}
	decode(t, rec, &body)

	require.True(t, strings.HasPrefix(body.URL, "https://wa.me/5511999999999?text="), body.URL)

	text, err := url.QueryUnescape(strings.TrimPrefix(body.URL, "https://wa.me/5511999999999?text="))
	require.NoError(t, err)
	assert.Contains(t, text, "• 2x Cantoneira 20mm - R$ 18.90/un → R$ 37.80")
	assert.Contains(t, text, "Total estimado: R$ 37.80")
}

func TestGenerateLink_BareArrayBody(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/whatsapp",
		`[{"nome": "Perfil U 25mm", "quantidade": 1, "valor_unitario": 2.5}]`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		URL string `json:"url"`
	}
	decode(t, rec, &body)

	text, err := url.QueryUnescape(strings.TrimPrefix(body.URL, "https://wa.me/5511999999999?text="))
	require.NoError(t, err)
	assert.Contains(t, text, "• 1x Perfil U 25mm - R$ 2.50/un → R$ 2.50")
}

func TestGenerateLink_EmptyPayloadIsBareLink(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/whatsapp", `{"itens": []}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		URL string `json:"url"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "https://wa.me/5511999999999", body.URL)
}

func TestGenerateLink_LegacyStringNumerics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/whatsapp",
		`{"itens": [{"nome": "Rodapé", "quantidade": "3", "valor_unitario": "10"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		URL string `json:"url"`
	}
	decode(t, rec, &body)

	text, err := url.QueryUnescape(strings.TrimPrefix(body.URL, "https://wa.me/5511999999999?text="))
	require.NoError(t, err)
	assert.Contains(t, text, "• 3x Rodapé - R$ 10.00/un → R$ 30.00")
}

func TestGenerateLink_InvalidBody(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/whatsapp", `{"itens": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Detail, "invalid request body")
}
