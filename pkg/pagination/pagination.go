package pagination

import (
	"net/http"
	"strconv"
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: 20,
		Offset:  0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 100 {
			p.PerPage = v
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	totalPages := totalCount / params.PerPage
	if totalCount%params.PerPage > 0 {
		totalPages++
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// PageItem is one entry of a compact pager: either a concrete page number or
// an ellipsis marker.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Compact builds the compact page list used by storefront pagers: all pages
// when there are at most seven, otherwise the first page, an ellipsis where
// the gap warrants one, a one-page window around the current page, and the
// last page.
func Compact(current, total int) []PageItem {
	if total <= 0 {
		return []PageItem{}
	}
	if total <= 7 {
		items := make([]PageItem, 0, total)
		for p := 1; p <= total; p++ {
			items = append(items, PageItem{Page: p})
		}
		return items
	}

	windowStart := max(2, current-1)
	windowEnd := min(total-1, current+1)

	items := []PageItem{{Page: 1}}
	if windowStart > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for p := windowStart; p <= windowEnd; p++ {
		items = append(items, PageItem{Page: p})
	}
	if windowEnd < total-1 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, PageItem{Page: total})
}
