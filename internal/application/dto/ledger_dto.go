package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/movements.
type RecordMovementRequest struct {
	ProductID string           `json:"product_id"`
	Direction string           `json:"direction"` // IN | OUT
	Amount    int64            `json:"amount"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"` // obligatorio en IN
	Reason    string           `json:"reason"`
	Reference string           `json:"reference,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// ReviseMovementRequest body para PUT /api/movements/:id.
type ReviseMovementRequest struct {
	Direction string           `json:"direction"`
	Amount    int64            `json:"amount"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// MovementResponse representación HTTP de un movimiento confirmado.
type MovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Direction    string          `json:"direction"`
	Amount       int64           `json:"amount"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Reason       string          `json:"reason"`
	Reference    string          `json:"reference,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	SupersededAt *time.Time      `json:"superseded_at,omitempty"`
	RetiredBy    string          `json:"retired_by,omitempty"`
}

// MovementResult respuesta de las operaciones del libro: el movimiento
// confirmado y el stock resultante del producto.
type MovementResult struct {
	Movement *MovementResponse `json:"movement,omitempty"`
	Quantity int64             `json:"quantity_on_hand"`
}
