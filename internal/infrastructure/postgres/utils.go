package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kimhun645/stock-ledger-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

// classifyError traduce fallos transitorios del store a los errores de dominio
// que el caller puede reintentar. Los errores de dominio pasan intactos; el
// resto se envuelve sin exponer detalle interno del driver.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	// Los errores de dominio ya vienen clasificados desde el motor.
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvariantViolation) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, "transacción excedió el tiempo límite")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return fmt.Errorf("%w: la transacción compitió por el bloqueo", domain.ErrConflict)
		case "57014": // query_canceled (statement_timeout)
			return fmt.Errorf("%w: consulta cancelada por timeout", domain.ErrTimeout)
		}
	}
	return err
}
