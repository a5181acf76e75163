// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Kind   string            `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: string(KindValidation), Detail: "Error de validacion", Fields: fields}
}

// ── Domain errors ─────────────────────────────────────────────────────────────

// Kind is the machine-checkable category of a domain error.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// Error carries a Kind plus a human-readable reason. Err, when set, is the
// underlying cause and is only ever logged.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(detail string) error     { return &Error{Kind: KindNotFound, Detail: detail} }
func Validation(detail string) error   { return &Error{Kind: KindValidation, Detail: detail} }
func Conflict(detail string) error     { return &Error{Kind: KindConflict, Detail: detail} }
func Unauthorized(detail string) error { return &Error{Kind: KindUnauthorized, Detail: detail} }
func Forbidden(detail string) error    { return &Error{Kind: KindForbidden, Detail: detail} }
func RateLimited(detail string) error  { return &Error{Kind: KindRateLimited, Detail: detail} }

// Validationf formats the reason like fmt.Sprintf.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// Wrap tags cause with kind, keeping it reachable through errors.Is/As.
func Wrap(kind Kind, detail string, cause error) error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the client-facing envelope. Internal errors never expose
// their cause.
func FromError(err error) (int, *APIError) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return HTTPStatus(e.Kind), &APIError{Kind: string(e.Kind), Detail: e.Detail}
	}
	return http.StatusInternalServerError, &APIError{Kind: string(KindInternal), Detail: "Error interno del servidor"}
}
