package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// LineItem is one cart entry in the legacy wire shape the browser clients
// still send: {"id": N, "quantidade": N, "nome": "...", "valor": N}. Name
// and unit price are denormalized snapshots of the catalog at add time; they
// may be absent or stale, and checkout resolves them against the catalog.
type LineItem struct {
	ID        int64   `json:"id"`
	Quantity  int     `json:"quantidade"`
	Name      string  `json:"nome,omitempty"`
	UnitPrice float64 `json:"valor"`
}

// lineItemWire carries the flex field types so a record with one mangled
// field still decodes, field by field, instead of failing whole.
type lineItemWire struct {
	ID        flexInt64  `json:"id"`
	Quantity  flexInt    `json:"quantidade"`
	Name      flexString `json:"nome"`
	UnitPrice flexFloat  `json:"valor"`
}

// UnmarshalJSON coerces each field independently. Only a value that is not
// a JSON object at all fails, which marks the containing record malformed.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return errors.New("line item is null")
	}
	var w lineItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	li.ID = int64(w.ID)
	li.Quantity = int(w.Quantity)
	li.Name = string(w.Name)
	li.UnitPrice = float64(w.UnitPrice)
	return nil
}

// Subtotal returns quantity times unit price for this line.
func (li LineItem) Subtotal() float64 {
	return float64(li.Quantity) * li.UnitPrice
}

// Cart is the full cart for one device, in stored order.
type Cart []LineItem

// TotalItems sums quantities across all lines.
func (c Cart) TotalItems() int {
	total := 0
	for _, li := range c {
		total += li.Quantity
	}
	return total
}

// Total sums line subtotals.
func (c Cart) Total() float64 {
	var total float64
	for _, li := range c {
		total += li.Subtotal()
	}
	return total
}

// FindIndex returns the index of the line with the given product ID, or -1.
func (c Cart) FindIndex(productID int64) int {
	for i, li := range c {
		if li.ID == productID {
			return i
		}
	}
	return -1
}

// Normalize clamps negative quantities to zero. It runs at the storage
// boundary so everything above it can assume quantities are non-negative.
// Zero-quantity lines written by older clients are kept as-is.
func (c Cart) Normalize() Cart {
	for i := range c {
		if c[i].Quantity < 0 {
			c[i].Quantity = 0
		}
	}
	return c
}

// PlaceholderName is the display name used for a line whose product is not
// in the catalog and carries no denormalized name.
func PlaceholderName(productID int64) string {
	return fmt.Sprintf("Product #%d", productID)
}
