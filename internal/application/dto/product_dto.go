package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products. El stock nace en 0 y
// solo cambia vía movimientos.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	ReorderFloor int64           `json:"reorder_floor,omitempty"`
	Price        decimal.Decimal `json:"price"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
	ReorderFloor   int64           `json:"reorder_floor"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
