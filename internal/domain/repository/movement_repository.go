package repository

import (
	"time"

	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos de stock.
// Los movimientos nunca se borran físicamente: Retire marca superseded_at y el
// registro queda para auditoría.
type MovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// Retire marca el movimiento como retirado (superseded_at = at,
	// retired_by = by). Devuelve domain.ErrNotFound si no existe o ya
	// estaba retirado.
	Retire(id string, at time.Time, by string) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error)
	// ListEffectiveByProduct devuelve los movimientos vigentes del producto en
	// orden de creación ascendente (el orden de replay de la conciliación).
	ListEffectiveByProduct(productID string) ([]*entity.StockMovement, error)
}
