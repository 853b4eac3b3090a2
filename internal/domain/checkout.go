package domain

import "encoding/json"

// Checkout attempt outcomes. Either releases the per-device submission
// guard; a failed attempt leaves the cart intact.
const (
	CheckoutStateCompleted = "completed"
	CheckoutStateFailed    = "failed"
)

// CheckoutLine is one resolved line of a checkout payload. Unlike LineItem
// it always carries a display name and unit price.
type CheckoutLine struct {
	Name      string  `json:"nome"`
	Quantity  int     `json:"quantidade"`
	UnitPrice float64 `json:"valor_unitario"`
}

type checkoutLineWire struct {
	Name      flexString `json:"nome"`
	Quantity  flexInt    `json:"quantidade"`
	UnitPrice flexFloat  `json:"valor_unitario"`
}

// UnmarshalJSON tolerates the loose numeric encodings legacy callers of the
// link endpoint still send.
func (cl *CheckoutLine) UnmarshalJSON(data []byte) error {
	var w checkoutLineWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	cl.Name = string(w.Name)
	cl.Quantity = int(w.Quantity)
	cl.UnitPrice = float64(w.UnitPrice)
	return nil
}

// Subtotal returns quantity times unit price for this line.
func (cl CheckoutLine) Subtotal() float64 {
	return float64(cl.Quantity) * cl.UnitPrice
}
