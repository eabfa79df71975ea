package repository

import (
	"github.com/shopspring/decimal"

	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos (DIP).
// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE): es el punto
// de serialización por producto del motor del libro de stock.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	// UpdateQuantity fija el stock vigente. Solo el motor la invoca, y solo
	// dentro de una transacción con la fila bloqueada.
	UpdateQuantity(id string, quantity int64) error
	// UpdateQuantityAndCost fija stock y costo promedio en una sola sentencia
	// (entradas que recalculan el costo ponderado).
	UpdateQuantityAndCost(id string, quantity int64, cost decimal.Decimal) error
}
