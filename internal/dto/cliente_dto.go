package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	TipoDoc             string  `json:"tipo_doc"             validate:"required,oneof=DNI RUC CE PASAPORTE OTRO"`
	NumDoc              string  `json:"num_doc"              validate:"required,min=4,max=80"`
	Nombre              string  `json:"nombre"               validate:"required,min=2,max=200"`
	Descripcion         *string `json:"descripcion"`
	Pais                *string `json:"pais"                 validate:"omitempty,max=80"`
	Ciudad              *string `json:"ciudad"               validate:"omitempty,max=80"`
	Zona                *string `json:"zona"                 validate:"omitempty,max=80"`
	Direccion           *string `json:"direccion"`
	ClasificacionRiesgo string  `json:"clasificacion_riesgo" validate:"omitempty,oneof=BAJO MEDIO ALTO"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ClienteFilter struct {
	Search string `form:"search"`
	Pais   string `form:"pais"`
	Ciudad string `form:"ciudad"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID                  string    `json:"id"`
	TipoDoc             string    `json:"tipo_doc"`
	NumDoc              string    `json:"num_doc"`
	Nombre              string    `json:"nombre"`
	Descripcion         *string   `json:"descripcion"`
	Pais                *string   `json:"pais"`
	Ciudad              *string   `json:"ciudad"`
	Zona                *string   `json:"zona"`
	Direccion           *string   `json:"direccion"`
	ClasificacionRiesgo string    `json:"clasificacion_riesgo"`
	CreatedAt           time.Time `json:"created_at"`
}
