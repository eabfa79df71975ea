// Package ledger contiene los servicios de dominio del libro de stock:
// la proyección de movimientos a deltas de cantidad y el costeo promedio.
package ledger

import "github.com/kimhun645/stock-ledger-api/internal/domain/entity"

// Apply proyecta un movimiento a su delta de stock: IN suma, OUT resta.
// Función pura; la validación de amount > 0 y dirección conocida ocurre
// antes, en el motor.
func Apply(direction string, amount int64) int64 {
	if direction == entity.DirectionOUT {
		return -amount
	}
	return amount
}

// Reverse devuelve el delta que deshace el efecto de un movimiento ya
// aplicado. Se usa al revisar o retirar un movimiento, siempre en la misma
// transacción que el nuevo efecto.
func Reverse(direction string, amount int64) int64 {
	return -Apply(direction, amount)
}
