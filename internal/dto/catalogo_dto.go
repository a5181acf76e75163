package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCatalogoRequest struct {
	ClienteID  string `json:"cliente_id"  validate:"required,uuid"`
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	// Etiqueta names the initial session; "default" when empty.
	Etiqueta string `json:"etiqueta" validate:"omitempty,max=80"`
}

// EditarCatalogoRequest only carries estado; CANCELADA is the one legal target.
type EditarCatalogoRequest struct {
	Estado string `json:"estado" validate:"required"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type CatalogoFilter struct {
	ClienteID  string `form:"cliente_id"`
	ProductoID string `form:"producto_id"`
	Estado     string `form:"estado"`
	// WithFinal: "true" only catalogs with a final version, "false" only without.
	WithFinal string `form:"with_final"`
	Search    string `form:"search"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CatalogoResponse struct {
	ID             string    `json:"id"`
	ClienteID      string    `json:"cliente_id"`
	ClienteNombre  string    `json:"cliente_nombre,omitempty"`
	ProductoID     string    `json:"producto_id"`
	ProductoNombre string    `json:"producto_nombre,omitempty"`
	Estado         string    `json:"estado"`
	FinalVersionID *string   `json:"final_version_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CrearCatalogoResponse includes the session opened together with the catalog.
type CrearCatalogoResponse struct {
	CatalogoResponse
	SesionInicial SesionResponse `json:"sesion_inicial"`
}

// OfertaFinalResponse is the binding offer of a CERRADA catalog.
type OfertaFinalResponse struct {
	Catalogo CatalogoResponse `json:"catalogo"`
	Version  VersionResponse  `json:"version"`
}
