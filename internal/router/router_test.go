package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/middleware"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-test-secret"

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ──────────────────────────────────────────────────────────────────

type apiEnv struct {
	engine *gin.Engine
	token  string
	lector string
}

func token(t *testing.T, roles ...string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{
		Email: "comercial@envaperu.pe",
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "envaperu-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func setup(t *testing.T) *apiEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{Env: "test", JWTSecret: secret, JWTIssuer: "envaperu-auth"}
	app := New(ctx, cfg, Deps{DB: testutil.NewDB(t)})
	return &apiEnv{engine: app.Engine, token: token(t, "COMERCIAL"), lector: token(t, "LECTOR")}
}

func (e *apiEnv) do(t *testing.T, method, path, body, tok string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func (e *apiEnv) crear(t *testing.T, path, body string) map[string]any {
	t.Helper()
	w := e.do(t, http.MethodPost, path, body, e.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

func (e *apiEnv) maestros(t *testing.T) (clienteID, productoID string) {
	t.Helper()
	cl := e.crear(t, "/v1/clientes", `{"tipo_doc":"RUC","num_doc":"20100047218","nombre":"Distribuidora Norte"}`)
	pr := e.crear(t, "/v1/productos", `{"nombre":"Balde 20L","um":"DOC","doc_x_bulto_caja":40,"doc_x_paq":10,"precio_exw":12.34,"familia":"BALDES"}`)
	return cl["id"].(string), pr["id"].(string)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestAuth(t *testing.T) {
	e := setup(t)

	for _, tok := range []string{"", "nope"} {
		w := e.do(t, http.MethodGet, "/v1/catalogos", "", tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decode(t, w)["kind"])
	}
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/catalogos", "", e.lector).Code)

	w := e.do(t, http.MethodPost, "/v1/clientes", `{"tipo_doc":"DNI","num_doc":"44556677","nombre":"Ana"}`, e.lector)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["kind"])
}

func TestMaestros_Validaciones(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodPost, "/v1/productos", `{"nombre":"Balde","um":"KILO","doc_x_paq":1,"precio_exw":1,"familia":"B"}`, e.token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "oneof", decode(t, w)["fields"].(map[string]any)["UM"])

	w = e.do(t, http.MethodPost, "/v1/clientes", `{not json`, e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decode(t, w)["kind"])

	w = e.do(t, http.MethodGet, "/v1/catalogos?page=abc", "", e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decode(t, w)["kind"])
	assert.NotContains(t, w.Body.String(), "strconv")

	w = e.do(t, http.MethodGet, "/v1/catalogos?page=9223372036854775807&per_page=100", "", e.token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	e.crear(t, "/v1/clientes", `{"tipo_doc":"DNI","num_doc":"44556677","nombre":"Ana"}`)
	w = e.do(t, http.MethodPost, "/v1/clientes", `{"tipo_doc":"DNI","num_doc":"44556677","nombre":"Otra"}`, e.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode(t, w)["kind"])

	w = e.do(t, http.MethodGet, "/v1/clientes/not-a-uuid", "", e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decode(t, w)["kind"])
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/v1/productos/00000000-0000-0000-0000-000000000001", "", e.token).Code)
}

func TestFlujoNegociacion(t *testing.T) {
	e := setup(t)
	clienteID, productoID := e.maestros(t)

	cat := e.crear(t, "/v1/catalogos", `{"cliente_id":"`+clienteID+`","producto_id":"`+productoID+`"}`)
	catID := cat["id"].(string)
	assert.Equal(t, "EN_PROCESO", cat["estado"])
	sesionID := cat["sesion_inicial"].(map[string]any)["id"].(string)

	w := e.do(t, http.MethodPost, "/v1/catalogos", `{"cliente_id":"`+clienteID+`","producto_id":"`+productoID+`"}`, e.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	v := e.crear(t, "/v1/sesiones/"+sesionID+"/versiones", `{"cant_bultos":5,"porc_desc":0.1}`)
	vID := v["id"].(string)
	assert.Equal(t, float64(1), v["version_num"])
	assert.Equal(t, "BORRADOR", v["estado"])
	assert.Equal(t, true, v["is_current"])
	assert.Equal(t, "11.11", v["precio_x_docena"])

	for _, body := range []string{`{"cant_bultos":100000000}`, `{"porc_desc":0.12345}`} {
		w = e.do(t, http.MethodPatch, "/v1/versiones/"+vID, body, e.token)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "validation", decode(t, w)["kind"])
	}

	w = e.do(t, http.MethodPatch, "/v1/versiones/"+vID, `{"estado":"APROBADA"}`, e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "estado")

	w = e.do(t, http.MethodPatch, "/v1/versiones/"+vID, `{"cant_bultos":6}`, e.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "6", decode(t, w)["cant_bultos"])

	w = e.do(t, http.MethodPost, "/v1/versiones/"+vID+"/aprobar", "", e.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, accion := range []string{"enviar", "contraoferta", "aprobar"} {
		w = e.do(t, http.MethodPost, "/v1/versiones/"+vID+"/"+accion, "", e.token)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", accion, w.Body.String())
	}
	aprobada := decode(t, w)
	assert.Equal(t, "APROBADA", aprobada["estado"])
	assert.Equal(t, true, aprobada["is_final"])

	w = e.do(t, http.MethodGet, "/v1/catalogos/"+catID, "", e.token)
	got := decode(t, w)
	assert.Equal(t, "CERRADA", got["estado"])
	assert.Equal(t, vID, got["final_version_id"])

	w = e.do(t, http.MethodPost, "/v1/sesiones/"+sesionID+"/versiones", "", e.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodGet, "/v1/catalogos/"+catID+"/final", "", e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, vID, decode(t, w)["version"].(map[string]any)["id"])

	w = e.do(t, http.MethodGet, "/v1/catalogos/"+catID+"/final/pdf", "", e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "_v1.pdf")

	w = e.do(t, http.MethodGet, "/v1/sesiones/"+sesionID+"/versiones", "", e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestSesiones(t *testing.T) {
	e := setup(t)
	clienteID, productoID := e.maestros(t)
	cat := e.crear(t, "/v1/catalogos", `{"cliente_id":"`+clienteID+`","producto_id":"`+productoID+`","etiqueta":"FOB"}`)
	catID := cat["id"].(string)

	s := e.crear(t, "/v1/catalogos/"+catID+"/sesiones", "")
	sID := s["id"].(string)
	assert.Equal(t, "escenario", s["etiqueta"])

	w := e.do(t, http.MethodPatch, "/v1/sesiones/"+sID, `{"catalogo_id":"x"}`, e.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPatch, "/v1/sesiones/"+sID, `{"etiqueta":"CIF Callao","is_active":false}`, e.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CIF Callao", decode(t, w)["etiqueta"])

	w = e.do(t, http.MethodGet, "/v1/catalogos/"+catID+"/sesiones?is_active=true", "", e.token)
	require.Equal(t, http.StatusOK, w.Code)
	lista := decode(t, w)["data"].([]any)
	require.Len(t, lista, 1)
	assert.Equal(t, "FOB", lista[0].(map[string]any)["etiqueta"])

	e.crear(t, "/v1/sesiones/"+sID+"/versiones", "")
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodDelete, "/v1/sesiones/"+sID, "", e.token).Code)

	vacia := e.crear(t, "/v1/catalogos/"+catID+"/sesiones", `{"etiqueta":"borrar"}`)
	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/v1/sesiones/"+vacia["id"].(string), "", e.token).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/v1/sesiones/"+vacia["id"].(string), "", e.token).Code)
}

func TestCancelarCatalogo(t *testing.T) {
	e := setup(t)
	clienteID, productoID := e.maestros(t)
	cat := e.crear(t, "/v1/catalogos", `{"cliente_id":"`+clienteID+`","producto_id":"`+productoID+`"}`)
	catID := cat["id"].(string)

	w := e.do(t, http.MethodPatch, "/v1/catalogos/"+catID, `{"estado":"CERRADA"}`, e.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPatch, "/v1/catalogos/"+catID, `{"estado":"CANCELADA"}`, e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELADA", decode(t, w)["estado"])

	w = e.do(t, http.MethodPost, "/v1/catalogos/"+catID+"/sesiones", "", e.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodGet, "/v1/catalogos?estado=CANCELADA", "", e.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestHealth_SinRedis(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
}
