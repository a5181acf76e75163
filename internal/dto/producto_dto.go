package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre        string          `json:"nombre"           validate:"required,min=2,max=200"`
	UM            string          `json:"um"               validate:"required,oneof=DOC UNID CIENTO"`
	DocXBultoCaja decimal.Decimal `json:"doc_x_bulto_caja" validate:"min=0"`
	DocXPaq       decimal.Decimal `json:"doc_x_paq"        validate:"min=0"`
	PrecioEXW     decimal.Decimal `json:"precio_exw"       validate:"min=0"`
	Familia       string          `json:"familia"          validate:"required,max=120"`
	ImagenKey     *string         `json:"imagen_key"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Search  string `form:"search"`
	Familia string `form:"familia"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	UM            string          `json:"um"`
	DocXBultoCaja decimal.Decimal `json:"doc_x_bulto_caja"`
	DocXPaq       decimal.Decimal `json:"doc_x_paq"`
	PrecioEXW     decimal.Decimal `json:"precio_exw"`
	Familia       string          `json:"familia"`
	ImagenKey     *string         `json:"imagen_key"`
	CreatedAt     time.Time       `json:"created_at"`
}
