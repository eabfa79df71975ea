package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento de stock.
const (
	DirectionIN  = "IN"  // entrada
	DirectionOUT = "OUT" // salida
)

// ValidDirection indica si s es una dirección conocida.
func ValidDirection(s string) bool {
	return s == DirectionIN || s == DirectionOUT
}

// StockMovement representa un evento de stock (entrada o salida) de un producto.
// Es inmutable una vez confirmado: "editar" o "borrar" un movimiento se modela
// retirando su efecto (SupersededAt) y, si aplica, registrando uno nuevo en la
// misma transacción. Los movimientos retirados se conservan para auditoría.
type StockMovement struct {
	ID           string
	ProductID    string
	Direction    string // IN, OUT
	Amount       int64  // siempre positivo; la dirección da el signo
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	Reason       string // compra, venta, ajuste, devolución, etc.
	Reference    string // factura, orden, nota
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
	SupersededAt *time.Time // nil = vigente; no nil = retirado (terminal)
	RetiredBy    string     // quién lo retiró; vacío mientras sigue vigente
}

// Effective indica si el movimiento sigue contando para el stock del producto.
func (m *StockMovement) Effective() bool {
	return m.SupersededAt == nil
}
