package dto

import "math"

// Paginacion is the page/per_page pair shared by every list endpoint.
// Out-of-range values are clamped, never rejected.
type Paginacion struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

const (
	PerPageDefault = 20
	PerPageMax     = 100

	// PageMax keeps Offset inside int for any per_page.
	PageMax = math.MaxInt / PerPageMax
)

// Normalizar clamps page to 1..PageMax and per_page to 1..100.
func (p Paginacion) Normalizar() Paginacion {
	switch {
	case p.Page < 1:
		p.Page = 1
	case p.Page > PageMax:
		p.Page = PageMax
	}
	switch {
	case p.PerPage < 1:
		p.PerPage = PerPageDefault
	case p.PerPage > PerPageMax:
		p.PerPage = PerPageMax
	}
	return p
}

func (p Paginacion) Offset() int { return (p.Page - 1) * p.PerPage }

// ListResponse is the envelope returned by every paginated list.
type ListResponse[T any] struct {
	Data    []T   `json:"data"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}
