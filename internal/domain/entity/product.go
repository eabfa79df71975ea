package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// QuantityOnHand es el stock vigente y solo lo muta el motor del libro de
// stock (nunca un handler ni otro caso de uso). ReorderFloor es informativo:
// el libro no decide política de reposición.
type Product struct {
	ID             string
	SKU            string // código único
	Name           string
	Description    string
	QuantityOnHand int64 // stock vigente, siempre >= 0
	ReorderFloor   int64
	Price          decimal.Decimal // precio de venta
	Cost           decimal.Decimal // costo promedio ponderado (inicia en 0)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
