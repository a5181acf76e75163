package middleware

import (
	"errors"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler turns errors attached with c.Error into the JSON envelope when
// the handler did not write a response itself. Causes are logged, never sent.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := apierror.FromError(err)
		ev := log.Warn()
		if status >= 500 {
			ev = log.Error()
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err).
			Msg("request failed")

		c.AbortWithStatusJSON(status, body)
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Interface("panic", r).
					Msg("panic recovered")
				abort(c, errors.New("panic"))
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, request_id
// and, on authenticated routes, the caller's subject.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		var ev *zerolog.Event
		switch status := c.Writer.Status(); {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		if p := GetPrincipal(c); p != nil {
			ev = ev.Str("sub", p.Subject)
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// abort stops the chain with the envelope for err.
func abort(c *gin.Context, err error) {
	status, body := apierror.FromError(err)
	c.AbortWithStatusJSON(status, body)
}
