// cmd/gentoken/main.go: Emite un token de desarrollo firmado con JWT_SECRET.
// Uso: go run ./cmd/gentoken -sub user-1 -email ana@envaperu.pe -roles ADMIN,COMERCIAL
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	sub := flag.String("sub", "dev-user", "subject")
	email := flag.String("email", "", "email that receives final offers")
	roles := flag.String("roles", "COMERCIAL", "comma-separated roles")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		Email: *email,
		Roles: strings.Split(*roles, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *sub,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.AccessTTLMin) * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
