package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Product is a catalog entry. JSON tags follow the storefront's public API,
// which has always spoken Portuguese field names.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nome"`
	Slug        string    `json:"-"`
	Description string    `json:"descricao"`
	Price       float64   `json:"valor"`
	ImageURL    string    `json:"imagem_url"`
	HasImage    bool      `json:"-"`
	Active      bool      `json:"ativo"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// PlaceholderImagePath is served when a product has neither stored image
// bytes nor an external image URL.
const PlaceholderImagePath = "/static/images/placeholder.png"

// DisplayImageURL resolves the image reference shown to clients: stored
// bytes win, then the external URL, then the placeholder.
func (p Product) DisplayImageURL() string {
	if p.HasImage {
		return fmt.Sprintf("/media/produto/%d", p.ID)
	}
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return PlaceholderImagePath
}

// ProductImage is the stored binary image for a product. SHA256 is computed
// at upload and doubles as the HTTP ETag.
type ProductImage struct {
	Bytes  []byte
	Mime   string
	SHA256 string
}

// catalogProductWire is the shape catalog feeds publish. Field spellings
// vary across feed revisions ("nome" vs "name") and prices arrive as numbers
// or numeric strings.
type catalogProductWire struct {
	ID      flexInt64  `json:"id"`
	Name    flexString `json:"nome"`
	AltName flexString `json:"name"`
	Price   flexFloat  `json:"valor"`
}

// ParseCatalog decodes a catalog feed. Entries without a usable ID are
// skipped; all other fields coerce leniently. Extra fields are ignored.
func ParseCatalog(data []byte) ([]Product, error) {
	var wire []catalogProductWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode catalog feed: %w", err)
	}

	products := make([]Product, 0, len(wire))
	for _, w := range wire {
		if w.ID < 1 {
			continue
		}
		name := string(w.Name)
		if name == "" {
			name = string(w.AltName)
		}
		products = append(products, Product{
			ID:     int64(w.ID),
			Name:   name,
			Price:  float64(w.Price),
			Active: true,
		})
	}

	return products, nil
}
