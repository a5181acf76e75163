package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/middleware"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 and required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apierror.Validation("JSON invalido"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			respondError(c, err)
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindRaw decodes the body as a JSON object keeping each value raw, for
// allow-listed patches. An empty body yields an empty map.
func bindRaw(c *gin.Context) (map[string]json.RawMessage, bool) {
	raw := map[string]json.RawMessage{}
	if c.Request.Body == nil {
		return raw, true
	}
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apierror.Validation("JSON invalido: se esperaba un objeto"))
		return nil, false
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, true
}

// parseID reads a UUID path parameter, answering 400 when malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apierror.Validationf("%s invalido: se esperaba un UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindQuery binds query-string filters, answering 400 on malformed values.
// The binder's own message is logged, not returned.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		log.Debug().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("query binding failed")
		respondError(c, apierror.Validation("parametros de consulta invalidos"))
		return false
	}
	return true
}

// respondError writes the envelope for err. Internal errors are logged with
// the request id and never leak their cause.
func respondError(c *gin.Context, err error) {
	status, body := apierror.FromError(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("internal error")
	}
	c.JSON(status, body)
}

// actor maps the authenticated principal to the service-level Actor.
func actor(c *gin.Context) service.Actor {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return service.Actor{}
	}
	return service.Actor{Subject: p.Subject, Email: p.Email}
}
