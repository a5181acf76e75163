// Package pricing derives the commercial figures of a version snapshot.
//
// Every value here is recomputed on read from the raw snapshot fields; nothing
// in this package touches storage. Figures that depend on the unit-of-measure
// factor are nil when the unit is not one of DOC, UNID or CIENTO.
package pricing

import (
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/shopspring/decimal"
)

// TaraPorBultoKg is the fixed packaging weight added per bundle to obtain the
// gross weight. It is an approximation, not a measured value.
var TaraPorBultoKg = decimal.RequireFromString("1.5")

var (
	cien = decimal.NewFromInt(100)
	mil  = decimal.NewFromInt(1000)
	uno  = decimal.NewFromInt(1)
)

// FactorUM returns how many units one "doc" field represents for um.
// ok is false for any unit other than DOC, UNID and CIENTO.
func FactorUM(um string) (k decimal.Decimal, ok bool) {
	switch um {
	case model.UMDocena:
		return decimal.NewFromInt(12), true
	case model.UMUnidad:
		return decimal.NewFromInt(1), true
	case model.UMCiento:
		return decimal.NewFromInt(100), true
	default:
		return decimal.Zero, false
	}
}

// UMValida reports whether um has a known factor.
func UMValida(um string) bool {
	_, ok := FactorUM(um)
	return ok
}

// Snapshot is the subset of a version the derivations read.
type Snapshot struct {
	UM         string
	DocXPaq    decimal.Decimal
	PrecioEXW  decimal.Decimal
	PorcDesc   *decimal.Decimal
	CantBultos decimal.Decimal
	PesoGr     *decimal.Decimal
	LargoCm    *decimal.Decimal
	AnchoCm    *decimal.Decimal
	AltoCm     *decimal.Decimal
}

// DesdeVersion extracts the pricing snapshot of v.
func DesdeVersion(v *model.Version) Snapshot {
	return Snapshot{
		UM:         v.UM,
		DocXPaq:    v.DocXPaq,
		PrecioEXW:  v.PrecioEXW,
		PorcDesc:   v.PorcDesc,
		CantBultos: v.CantBultos,
		PesoGr:     v.PesoGr,
		LargoCm:    v.LargoCm,
		AnchoCm:    v.AnchoCm,
		AltoCm:     v.AltoCm,
	}
}

// Derivados holds the computed figures. JSON names match the API contract.
type Derivados struct {
	PrecioXDocena      *decimal.Decimal `json:"precio_x_docena"`
	CantidadPorPaquete *decimal.Decimal `json:"cantidad_por_paquete"`
	PrecioUnidadEXW    *decimal.Decimal `json:"precio_unidad_exw"`
	VolumenPaqueteCBM  *decimal.Decimal `json:"volumen_paquete_cbm"`
	CantidadUnidades   *decimal.Decimal `json:"cantidad_unidades"`
	SubtotalEXW        *decimal.Decimal `json:"subtotal_exw"`
	CBMTotal           *decimal.Decimal `json:"cbm_total"`
	PesoNetoKg         *decimal.Decimal `json:"peso_neto_kg"`
	PesoBrutoKg        *decimal.Decimal `json:"peso_bruto_kg"`
}

// Calcular applies the pricing formulas to s.
func Calcular(s Snapshot) Derivados {
	var d Derivados

	precioDocena := s.PrecioEXW.Mul(uno.Sub(orZero(s.PorcDesc))).Round(2)
	d.PrecioXDocena = &precioDocena

	volumen := orZero(s.LargoCm).Div(cien).
		Mul(orZero(s.AnchoCm).Div(cien)).
		Mul(orZero(s.AltoCm).Div(cien))
	d.VolumenPaqueteCBM = &volumen

	cbm := volumen.Mul(s.CantBultos)
	d.CBMTotal = &cbm

	k, ok := FactorUM(s.UM)
	if !ok {
		return d
	}

	porPaquete := s.DocXPaq.Mul(k)
	d.CantidadPorPaquete = &porPaquete

	precioUnidad := precioDocena.Div(k)
	d.PrecioUnidadEXW = &precioUnidad

	unidades := porPaquete.Mul(s.CantBultos)
	d.CantidadUnidades = &unidades

	subtotal := s.CantBultos.Mul(s.DocXPaq).Mul(precioUnidad)
	d.SubtotalEXW = &subtotal

	neto := orZero(s.PesoGr).Mul(unidades).Div(mil)
	d.PesoNetoKg = &neto

	bruto := neto.Add(TaraPorBultoKg.Mul(s.CantBultos))
	d.PesoBrutoKg = &bruto

	return d
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
