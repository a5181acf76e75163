package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func contexto(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == "" {
		c.Request = httptest.NewRequest(method, "/", nil)
	} else {
		c.Request = httptest.NewRequest(method, "/", bytes.NewBufferString(body))
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{apierror.NotFound("versión no existe"), http.StatusNotFound, "versión no existe"},
		{apierror.Conflict("catálogo cerrado: solo lectura"), http.StatusConflict, "catálogo cerrado: solo lectura"},
		{apierror.Validation("nada que actualizar"), http.StatusBadRequest, "nada que actualizar"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "Error interno del servidor"},
	}
	for _, tc := range cases {
		c, w := contexto(http.MethodGet, "")
		respondError(c, tc.err)
		assert.Equal(t, tc.status, w.Code)
		assert.Contains(t, w.Body.String(), tc.detail)
		assert.NotContains(t, w.Body.String(), "pq:")
	}
}

func TestBindRaw(t *testing.T) {
	c, _ := contexto(http.MethodPost, "")
	raw, ok := bindRaw(c)
	require.True(t, ok)
	assert.Empty(t, raw)

	c, _ = contexto(http.MethodPatch, `{"cant_bultos": 3, "familia": null}`)
	raw, ok = bindRaw(c)
	require.True(t, ok)
	assert.Len(t, raw, 2)
	assert.Equal(t, "null", string(raw["familia"]))

	c, w := contexto(http.MethodPatch, `[1,2]`)
	_, ok = bindRaw(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"validation"`)
}

func TestBindAndValidate_Decimal(t *testing.T) {
	c, w := contexto(http.MethodPost, `{"nombre":"Balde","um":"DOC","doc_x_paq":-1,"precio_exw":2,"familia":"B"}`)
	var req dto.CrearProductoRequest
	assert.False(t, bindAndValidate(c, &req))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "DocXPaq")

	c, _ = contexto(http.MethodPost, `{"nombre":"Balde","um":"DOC","doc_x_paq":1,"precio_exw":2,"familia":"B"}`)
	assert.True(t, bindAndValidate(c, &req))
	assert.Equal(t, "2", req.PrecioEXW.String())
}
