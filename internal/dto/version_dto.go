package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/pricing"

	"github.com/shopspring/decimal"
)

// Anulable distinguishes an absent key (Presente=false) from an explicit
// null (Presente=true, Valor=nil) in a patch body.
type Anulable[T any] struct {
	Presente bool
	Valor    *T
}

// VersionPatch is the allow-listed set of snapshot fields a client may set,
// both as overrides on creation and as a PATCH on an editable version.
// um, doc_x_paq, precio_exw and cant_bultos are not nullable.
type VersionPatch struct {
	UM         *string
	DocXPaq    *decimal.Decimal
	PrecioEXW  *decimal.Decimal
	CantBultos *decimal.Decimal

	DocXBultoCaja Anulable[decimal.Decimal]
	PorcDesc      Anulable[decimal.Decimal]
	PesoGr        Anulable[decimal.Decimal]
	LargoCm       Anulable[decimal.Decimal]
	AnchoCm       Anulable[decimal.Decimal]
	AltoCm        Anulable[decimal.Decimal]

	Familia       Anulable[string]
	FotoKey       Anulable[string]
	Observaciones Anulable[string]

	campos int
}

var camposVersionPatch = map[string]struct{}{
	"um": {}, "doc_x_bulto_caja": {}, "doc_x_paq": {}, "precio_exw": {}, "porc_desc": {},
	"cant_bultos": {}, "peso_gr": {}, "largo_cm": {}, "ancho_cm": {}, "alto_cm": {},
	"familia": {}, "foto_key": {}, "observaciones": {},
}

var unoDecimal = decimal.NewFromInt(1)

// ParseVersionPatch decodes raw into a VersionPatch. Unknown keys, nulls on
// required fields, negative measures, a discount outside [0,1] and an
// unrecognized unit are all Validation errors.
func ParseVersionPatch(raw map[string]json.RawMessage) (VersionPatch, error) {
	var p VersionPatch
	if err := rechazarDesconocidos(raw, camposVersionPatch); err != nil {
		return p, err
	}
	p.campos = len(raw)

	if v, ok := raw["um"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil {
			return p, apierror.Validation("um es obligatorio")
		}
		um := strings.ToUpper(strings.TrimSpace(*s))
		if !pricing.UMValida(um) {
			return p, apierror.Validationf("um inválida: %q (DOC|UNID|CIENTO)", *s)
		}
		p.UM = &um
	}

	requeridos := []struct {
		campo   string
		destino **decimal.Decimal
	}{
		{"doc_x_paq", &p.DocXPaq},
		{"precio_exw", &p.PrecioEXW},
		{"cant_bultos", &p.CantBultos},
	}
	for _, r := range requeridos {
		v, ok := raw[r.campo]
		if !ok {
			continue
		}
		d, err := decimalRequerido(r.campo, v)
		if err != nil {
			return p, err
		}
		*r.destino = d
	}

	opcionales := []struct {
		campo   string
		destino *Anulable[decimal.Decimal]
	}{
		{"doc_x_bulto_caja", &p.DocXBultoCaja},
		{"porc_desc", &p.PorcDesc},
		{"peso_gr", &p.PesoGr},
		{"largo_cm", &p.LargoCm},
		{"ancho_cm", &p.AnchoCm},
		{"alto_cm", &p.AltoCm},
	}
	for _, o := range opcionales {
		v, ok := raw[o.campo]
		if !ok {
			continue
		}
		a, err := decimalAnulable(o.campo, v)
		if err != nil {
			return p, err
		}
		*o.destino = a
	}
	if d := p.PorcDesc.Valor; d != nil && d.GreaterThan(unoDecimal) {
		return p, apierror.Validation("porc_desc es una fracción entre 0 y 1")
	}

	textos := []struct {
		campo   string
		destino *Anulable[string]
	}{
		{"familia", &p.Familia},
		{"foto_key", &p.FotoKey},
		{"observaciones", &p.Observaciones},
	}
	for _, t := range textos {
		v, ok := raw[t.campo]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return p, apierror.Validationf("%s debe ser texto", t.campo)
		}
		*t.destino = Anulable[string]{Presente: true, Valor: s}
	}
	return p, nil
}

// Vacio reports whether the patch carries no field at all.
func (p VersionPatch) Vacio() bool { return p.campos == 0 }

// Aplicar writes every present field of p onto v.
func (p VersionPatch) Aplicar(v *model.Version) {
	if p.UM != nil {
		v.UM = *p.UM
	}
	if p.DocXPaq != nil {
		v.DocXPaq = *p.DocXPaq
	}
	if p.PrecioEXW != nil {
		v.PrecioEXW = *p.PrecioEXW
	}
	if p.CantBultos != nil {
		v.CantBultos = *p.CantBultos
	}
	aplicar(&v.DocXBultoCaja, p.DocXBultoCaja)
	aplicar(&v.PorcDesc, p.PorcDesc)
	aplicar(&v.PesoGr, p.PesoGr)
	aplicar(&v.LargoCm, p.LargoCm)
	aplicar(&v.AnchoCm, p.AnchoCm)
	aplicar(&v.AltoCm, p.AltoCm)
	aplicar(&v.Familia, p.Familia)
	aplicar(&v.FotoKey, p.FotoKey)
	aplicar(&v.Observaciones, p.Observaciones)
}

func aplicar[T any](dst **T, a Anulable[T]) {
	if a.Presente {
		*dst = a.Valor
	}
}

func decimalRequerido(campo string, raw json.RawMessage) (*decimal.Decimal, error) {
	a, err := decimalAnulable(campo, raw)
	if err != nil {
		return nil, err
	}
	if a.Valor == nil {
		return nil, apierror.Validationf("%s no puede ser null", campo)
	}
	return a.Valor, nil
}

func decimalAnulable(campo string, raw json.RawMessage) (Anulable[decimal.Decimal], error) {
	a := Anulable[decimal.Decimal]{Presente: true}
	if strings.TrimSpace(string(raw)) == "null" {
		return a, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return a, apierror.Validationf("%s debe ser numérico", campo)
	}
	if d.IsNegative() {
		return a, apierror.Validation(fmt.Sprintf("%s no puede ser negativo", campo))
	}
	if err := CabeEnColumna(campo, d); err != nil {
		return a, err
	}
	a.Valor = &d
	return a, nil
}

// columna mirrors a NUMERIC(p,s) column: enteros = p-s digits before the
// point, escala = s digits after it.
type columna struct{ enteros, escala int32 }

var columnasDecimales = map[string]columna{
	"doc_x_bulto_caja": {8, 2},
	"doc_x_paq":        {8, 2},
	"cant_bultos":      {8, 2},
	"peso_gr":          {8, 2},
	"largo_cm":         {8, 2},
	"ancho_cm":         {8, 2},
	"alto_cm":          {8, 2},
	"precio_exw":       {8, 4},
	"porc_desc":        {1, 4},
}

// CabeEnColumna rejects a value the column for campo would overflow or
// silently round. Unknown fields pass.
func CabeEnColumna(campo string, d decimal.Decimal) error {
	col, ok := columnasDecimales[campo]
	if !ok {
		return nil
	}
	if d.Abs().GreaterThanOrEqual(decimal.New(1, col.enteros)) {
		return apierror.Validationf("%s excede el máximo permitido (%d dígitos enteros)", campo, col.enteros)
	}
	if !d.Equal(d.Truncate(col.escala)) {
		return apierror.Validationf("%s admite como máximo %d decimales", campo, col.escala)
	}
	return nil
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type VersionFilter struct {
	Estado string `form:"estado"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// VersionResponse is the stored snapshot plus the derived pricing figures,
// recomputed on every read.
type VersionResponse struct {
	ID            string           `json:"id"`
	SesionID      string           `json:"sesion_id"`
	CatalogoID    string           `json:"catalogo_id"`
	ProductoID    string           `json:"producto_id"`
	VersionNum    int              `json:"version_num"`
	Estado        string           `json:"estado"`
	IsCurrent     bool             `json:"is_current"`
	IsFinal       bool             `json:"is_final"`
	UM            string           `json:"um"`
	DocXBultoCaja *decimal.Decimal `json:"doc_x_bulto_caja"`
	DocXPaq       decimal.Decimal  `json:"doc_x_paq"`
	PrecioEXW     decimal.Decimal  `json:"precio_exw"`
	PorcDesc      *decimal.Decimal `json:"porc_desc"`
	CantBultos    decimal.Decimal  `json:"cant_bultos"`
	PesoGr        *decimal.Decimal `json:"peso_gr"`
	LargoCm       *decimal.Decimal `json:"largo_cm"`
	AnchoCm       *decimal.Decimal `json:"ancho_cm"`
	AltoCm        *decimal.Decimal `json:"alto_cm"`
	Familia       *string          `json:"familia"`
	FotoKey       *string          `json:"foto_key"`
	Observaciones *string          `json:"observaciones"`
	pricing.Derivados
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
