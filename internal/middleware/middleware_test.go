package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func firmar(t *testing.T, method jwt.SigningMethod, key interface{}, claims JWTClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsValidos(roles ...string) JWTClaims {
	return JWTClaims{
		Email: "ana@envaperu.pe",
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "envaperu-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func engine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			c.String(http.StatusOK, "anon")
			return
		}
		c.String(http.StatusOK, p.Subject+"|"+p.Email)
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func kind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Kind
}

func TestJWTAuth(t *testing.T) {
	r := engine(JWTAuth(testSecret, "envaperu-auth"))

	w := get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), claimsValidos()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42|ana@envaperu.pe", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", kind(t, w))
	w = get(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", kind(t, w))
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, jwt.SigningMethodHS256, []byte("other"), claimsValidos())).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, jwt.SigningMethodHS512, []byte(testSecret), claimsValidos())).Code)

	expirado := claimsValidos()
	expirado.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), expirado)).Code)

	otroIssuer := claimsValidos()
	otroIssuer.Issuer = "someone-else"
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), otroIssuer)).Code)

	sinSub := claimsValidos()
	sinSub.Subject = ""
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), sinSub)).Code)
}

func TestRequireRole(t *testing.T) {
	r := engine(JWTAuth(testSecret, ""), RequireRole(RolAdmin, RolComercial))

	assert.Equal(t, http.StatusOK, get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), claimsValidos("comercial"))).Code)
	w := get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), claimsValidos("LECTOR")))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", kind(t, w))
	assert.Equal(t, http.StatusForbidden, get(r, firmar(t, jwt.SigningMethodHS256, []byte(testSecret), claimsValidos())).Code)
}

func TestRequestID_Propagado(t *testing.T) {
	r := engine()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	ahora := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return ahora }
	r := engine(l.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	w := get(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", kind(t, w))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	ahora = ahora.Add(2 * time.Minute)
	assert.Equal(t, 1, l.purge())
	assert.Equal(t, http.StatusOK, get(r, "").Code)
}

func TestCORS(t *testing.T) {
	r := engine(CORS([]string{"https://app.envaperu.pe"}))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.envaperu.pe")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.envaperu.pe", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
