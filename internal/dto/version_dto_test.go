package dto

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBody(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestParseVersionPatch_AplicaSoloCamposPresentes(t *testing.T) {
	p, err := ParseVersionPatch(rawBody(t, `{"precio_exw": "9.50", "porc_desc": null, "observaciones": "segunda ronda", "um": "ciento"}`))
	require.NoError(t, err)

	desc := decimal.RequireFromString("0.10")
	peso := decimal.NewFromInt(250)
	v := &model.Version{
		UM:        model.UMDocena,
		DocXPaq:   decimal.NewFromInt(10),
		PrecioEXW: decimal.RequireFromString("12.34"),
		PorcDesc:  &desc,
		PesoGr:    &peso,
	}
	p.Aplicar(v)

	assert.Equal(t, model.UMCiento, v.UM)
	assert.True(t, v.PrecioEXW.Equal(decimal.RequireFromString("9.5")))
	assert.Nil(t, v.PorcDesc, "explicit null clears the discount")
	require.NotNil(t, v.PesoGr, "absent key leaves the field untouched")
	assert.True(t, v.PesoGr.Equal(peso))
	require.NotNil(t, v.Observaciones)
	assert.Equal(t, "segunda ronda", *v.Observaciones)
	assert.True(t, v.DocXPaq.Equal(decimal.NewFromInt(10)))
}

func TestParseVersionPatch_RechazaCamposNoPermitidos(t *testing.T) {
	_, err := ParseVersionPatch(rawBody(t, `{"estado": "APROBADA", "is_final": true, "cant_bultos": 2}`))
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Contains(t, err.Error(), "estado, is_final")
}

func TestParseVersionPatch_Validaciones(t *testing.T) {
	casos := map[string]string{
		"null en requerido":      `{"precio_exw": null}`,
		"um null":                `{"um": null}`,
		"um desconocida":         `{"um": "KILO"}`,
		"negativo":               `{"cant_bultos": -1}`,
		"descuento mayor 1":      `{"porc_desc": 1.5}`,
		"no numerico":            `{"largo_cm": "abc"}`,
		"texto no es string":     `{"familia": 12}`,
		"excede columna":         `{"cant_bultos": 100000000}`,
		"precio muy grande":      `{"precio_exw": 123456789.5}`,
		"demasiados decimales":   `{"porc_desc": 0.12345}`,
		"medida con 3 decimales": `{"peso_gr": 10.125}`,
	}
	for nombre, body := range casos {
		t.Run(nombre, func(t *testing.T) {
			_, err := ParseVersionPatch(rawBody(t, body))
			assert.True(t, apierror.Is(err, apierror.KindValidation), "got %v", err)
		})
	}
}

func TestCabeEnColumna(t *testing.T) {
	assert.NoError(t, CabeEnColumna("cant_bultos", decimal.RequireFromString("99999999.99")))
	assert.NoError(t, CabeEnColumna("porc_desc", decimal.RequireFromString("0.1250")))
	assert.NoError(t, CabeEnColumna("precio_exw", decimal.RequireFromString("12.3456")))
	assert.NoError(t, CabeEnColumna("observaciones", decimal.RequireFromString("1e20")))

	err := CabeEnColumna("precio_exw", decimal.RequireFromString("12.34567"))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Contains(t, err.Error(), "4 decimales")
}

func TestParseVersionPatch_Vacio(t *testing.T) {
	p, err := ParseVersionPatch(rawBody(t, `{}`))
	require.NoError(t, err)
	assert.True(t, p.Vacio())
}

func TestParseSesionPatch(t *testing.T) {
	p, err := ParseSesionPatch(rawBody(t, `{"etiqueta": " FOB ", "is_active": false}`))
	require.NoError(t, err)
	assert.Equal(t, "FOB", *p.Etiqueta)
	assert.False(t, *p.IsActive)

	_, err = ParseSesionPatch(rawBody(t, `{"catalogo_id": "x"}`))
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	_, err = ParseSesionPatch(rawBody(t, `{}`))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestPaginacion_Normalizar(t *testing.T) {
	p := Paginacion{Page: 0, PerPage: 500}.Normalizar()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, PerPageMax, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = Paginacion{Page: 3, PerPage: 0}.Normalizar()
	assert.Equal(t, PerPageDefault, p.PerPage)
	assert.Equal(t, 40, p.Offset())

	p = Paginacion{Page: math.MaxInt, PerPage: PerPageMax}.Normalizar()
	assert.Equal(t, PageMax, p.Page)
	assert.Positive(t, p.Offset())
	assert.Equal(t, (PageMax-1)*PerPageMax, p.Offset())
}
