package middleware

import (
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const PrincipalKey = "principal"

// Roles accepted by RequireRole on master-data writes.
const (
	RolAdmin     = "ADMIN"
	RolComercial = "COMERCIAL"
)

// JWTClaims are the claims issued by the external auth service.
type JWTClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller, as stored in the Gin context.
type Principal struct {
	Subject string
	Email   string
	Roles   []string
}

// HasRole reports whether p carries any of roles.
func (p *Principal) HasRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// JWTAuth validates the HS256 Bearer token on every protected route. When
// issuer is non-empty the iss claim must match it.
func JWTAuth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abort(c, apierror.Unauthorized("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.Subject == "" {
			abort(c, apierror.Unauthorized("Token invalido o expirado"))
			return
		}

		c.Set(PrincipalKey, &Principal{Subject: claims.Subject, Email: claims.Email, Roles: claims.Roles})
		c.Next()
	}
}

// RequireRole rejects requests whose principal has none of the allowed roles.
// Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || !p.HasRole(roles...) {
			abort(c, apierror.Forbidden("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or nil on public routes.
func GetPrincipal(c *gin.Context) *Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
