package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	casos := []struct {
		err    error
		status int
		kind   string
	}{
		{Unauthorized("Autenticacion requerida"), http.StatusUnauthorized, "unauthorized"},
		{Forbidden("Permisos insuficientes"), http.StatusForbidden, "forbidden"},
		{RateLimited("Demasiadas solicitudes"), http.StatusTooManyRequests, "rate_limited"},
		{Validation("JSON invalido"), http.StatusBadRequest, "validation"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, c := range casos {
		status, body := FromError(c.err)
		assert.Equal(t, c.status, status)
		assert.Equal(t, c.kind, body.Kind)
	}
}
