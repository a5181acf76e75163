package dto

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearSesionRequest struct {
	// Etiqueta defaults to "escenario" when empty.
	Etiqueta string `json:"etiqueta" validate:"omitempty,max=80"`
}

// SesionPatch lists the fields a PATCH on a session may touch.
type SesionPatch struct {
	Etiqueta *string
	IsActive *bool
}

var camposSesionPatch = map[string]struct{}{"etiqueta": {}, "is_active": {}}

// ParseSesionPatch decodes a raw JSON object, rejecting keys outside the allow-list.
func ParseSesionPatch(raw map[string]json.RawMessage) (SesionPatch, error) {
	var p SesionPatch
	if err := rechazarDesconocidos(raw, camposSesionPatch); err != nil {
		return p, err
	}
	if v, ok := raw["etiqueta"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil || strings.TrimSpace(*s) == "" {
			return p, apierror.Validation("etiqueta debe ser texto no vacío")
		}
		t := strings.TrimSpace(*s)
		p.Etiqueta = &t
	}
	if v, ok := raw["is_active"]; ok {
		var b *bool
		if err := json.Unmarshal(v, &b); err != nil || b == nil {
			return p, apierror.Validation("is_active debe ser booleano")
		}
		p.IsActive = b
	}
	if p.Etiqueta == nil && p.IsActive == nil {
		return p, apierror.Validation("nada que actualizar")
	}
	return p, nil
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type SesionFilter struct {
	// IsActive: "true" / "false"; anything else means no filter.
	IsActive    string `form:"is_active"`
	WithCurrent bool   `form:"with_current"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionResponse struct {
	ID         string    `json:"id"`
	CatalogoID string    `json:"catalogo_id"`
	Etiqueta   string    `json:"etiqueta"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	// Current is only filled when with_current is requested.
	Current *VersionResponse `json:"current,omitempty"`
}

func rechazarDesconocidos(raw map[string]json.RawMessage, permitidos map[string]struct{}) error {
	var extra []string
	for k := range raw {
		if _, ok := permitidos[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return apierror.Validation("campos no permitidos: " + strings.Join(extra, ", "))
}
