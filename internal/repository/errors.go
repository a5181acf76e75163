package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// TranslateError maps a storage failure onto the API error taxonomy.
// entidad names the row that was looked up ("versión", "sesión", ...) and is
// used for the NotFound detail. Errors that already carry a kind pass through.
//
// Store-level contention (lock timeout, serialization failure, deadlock) and
// constraint backstops surface as Conflict so the caller may retry the whole
// operation.
func TranslateError(err error, entidad string) error {
	if err == nil {
		return nil
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.Wrap(apierror.KindNotFound, entidad+" no existe", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Wrap(apierror.KindConflict, "registro duplicado", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierror.Wrap(apierror.KindConflict, "operación concurrente en curso, reintente", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return apierror.Wrap(apierror.KindConflict, "registro duplicado", err)
		case "23514": // check_violation
			return apierror.Wrap(apierror.KindConflict, "restricción de integridad violada", err)
		case "23503": // foreign_key_violation
			return apierror.Wrap(apierror.KindConflict, "referencia inválida", err)
		case "22003": // numeric_value_out_of_range
			return apierror.Wrap(apierror.KindValidation, "valor numérico fuera de rango", err)
		case "40001", "40P01", "55P03": // serialization / deadlock / lock_not_available
			return apierror.Wrap(apierror.KindConflict, "operación concurrente en curso, reintente", err)
		}
	}

	// SQLite reports constraint failures only through the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return apierror.Wrap(apierror.KindConflict, "registro duplicado", err)
	case strings.Contains(msg, "check constraint failed"):
		return apierror.Wrap(apierror.KindConflict, "restricción de integridad violada", err)
	case strings.Contains(msg, "database is locked"):
		return apierror.Wrap(apierror.KindConflict, "operación concurrente en curso, reintente", err)
	}
	return apierror.Wrap(apierror.KindInternal, "error de base de datos", err)
}

// IsNotFound reports whether err is a missing-row error from GORM.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
