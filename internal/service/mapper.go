package service

import (
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/pricing"
)

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:                  c.ID.String(),
		TipoDoc:             c.TipoDoc,
		NumDoc:              c.NumDoc,
		Nombre:              c.Nombre,
		Descripcion:         c.Descripcion,
		Pais:                c.Pais,
		Ciudad:              c.Ciudad,
		Zona:                c.Zona,
		Direccion:           c.Direccion,
		ClasificacionRiesgo: c.ClasificacionRiesgo,
		CreatedAt:           c.CreatedAt,
	}
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:            p.ID.String(),
		Nombre:        p.Nombre,
		UM:            p.UM,
		DocXBultoCaja: p.DocXBultoCaja,
		DocXPaq:       p.DocXPaq,
		PrecioEXW:     p.PrecioEXW,
		Familia:       p.Familia,
		ImagenKey:     p.ImagenKey,
		CreatedAt:     p.CreatedAt,
	}
}

func catalogoToResponse(c *model.Catalogo) dto.CatalogoResponse {
	r := dto.CatalogoResponse{
		ID:         c.ID.String(),
		ClienteID:  c.ClienteID.String(),
		ProductoID: c.ProductoID.String(),
		Estado:     c.Estado,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.FinalVersionID != nil {
		id := c.FinalVersionID.String()
		r.FinalVersionID = &id
	}
	if c.Cliente != nil {
		r.ClienteNombre = c.Cliente.Nombre
	}
	if c.Producto != nil {
		r.ProductoNombre = c.Producto.Nombre
	}
	return r
}

func sesionToResponse(s *model.Sesion) dto.SesionResponse {
	return dto.SesionResponse{
		ID:         s.ID.String(),
		CatalogoID: s.CatalogoID.String(),
		Etiqueta:   s.Etiqueta,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt,
	}
}

// versionToResponse always recomputes the derived figures from the snapshot.
func versionToResponse(v *model.Version) dto.VersionResponse {
	return dto.VersionResponse{
		ID:            v.ID.String(),
		SesionID:      v.SesionID.String(),
		CatalogoID:    v.CatalogoID.String(),
		ProductoID:    v.ProductoID.String(),
		VersionNum:    v.VersionNum,
		Estado:        v.Estado,
		IsCurrent:     v.IsCurrent,
		IsFinal:       v.IsFinal,
		UM:            v.UM,
		DocXBultoCaja: v.DocXBultoCaja,
		DocXPaq:       v.DocXPaq,
		PrecioEXW:     v.PrecioEXW,
		PorcDesc:      v.PorcDesc,
		CantBultos:    v.CantBultos,
		PesoGr:        v.PesoGr,
		LargoCm:       v.LargoCm,
		AnchoCm:       v.AnchoCm,
		AltoCm:        v.AltoCm,
		Familia:       v.Familia,
		FotoKey:       v.FotoKey,
		Observaciones: v.Observaciones,
		Derivados:     pricing.Calcular(pricing.DesdeVersion(v)),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
