// Package whatsapp composes wa.me checkout links from quote lines.
package whatsapp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/domain"
)

const baseURL = "https://wa.me/"

// Builder renders the quote-request message for a WhatsApp number and wraps
// it in a wa.me link.
type Builder struct {
	number string
}

// NewBuilder creates a Builder for the given phone number (digits only,
// country code included).
func NewBuilder(number string) *Builder {
	return &Builder{number: number}
}

// Generate returns the checkout link for the given lines. An empty payload
// yields the bare conversation link with no prefilled text.
func (b *Builder) Generate(_ context.Context, lines []domain.CheckoutLine) (string, error) {
	if len(lines) == 0 {
		return baseURL + b.number, nil
	}
	return baseURL + b.number + "?text=" + url.QueryEscape(b.Message(lines)), nil
}

// Message renders the plain-text quote request. The exact wording, bullet
// layout and number formatting are part of the link contract with existing
// clients; do not reword.
func (b *Builder) Message(lines []domain.CheckoutLine) string {
	var sb strings.Builder
	sb.WriteString("Olá! Tenho interesse nos seguintes itens da Cantoneira Fácil:\n\n")

	var total float64
	for _, l := range lines {
		subtotal := l.Subtotal()
		total += subtotal
		fmt.Fprintf(&sb, "• %dx %s - R$ %.2f/un → R$ %.2f\n", l.Quantity, l.Name, l.UnitPrice, subtotal)
	}

	fmt.Fprintf(&sb, "\nTotal estimado: R$ %.2f\n\nPode me passar orçamento com frete e prazo de entrega?\nObrigado!", total)

	return sb.String()
}
