package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Usar con errors.Is.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvariantViolation = errors.New("inconsistencia en el libro de stock")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrTimeout            = errors.New("la operación no pudo completarse a tiempo")
)

// InsufficientStockError detalla un rechazo por stock insuficiente:
// qué producto, cuánto se pidió y cuánto había disponible.
// errors.Is(err, ErrInsufficientStock) devuelve true.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvariantViolationError indica que deshacer un movimiento dejaría el stock
// negativo: el saldo almacenado ya no cuadra con los movimientos registrados.
// El operador debe ejecutar una conciliación, no reintentar.
type InvariantViolationError struct {
	ProductID  string
	MovementID string
	Stored     int64
	Undo       int64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("inconsistencia en producto %s: deshacer movimiento %s (delta %d) dejaría el stock en %d",
		e.ProductID, e.MovementID, e.Undo, e.Stored+e.Undo)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }
