package usecase

import (
	"github.com/kimhun645/stock-ledger-api/internal/application/dto"
	"github.com/kimhun645/stock-ledger-api/internal/domain"
	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
	"github.com/kimhun645/stock-ledger-api/internal/domain/repository"
)

// MovementQueryUseCase lecturas del historial de movimientos (fuera de
// transacción; las escrituras van por el motor del libro).
type MovementQueryUseCase struct {
	movements repository.MovementRepository
	products  repository.ProductRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(movements repository.MovementRepository, products repository.ProductRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movements: movements, products: products}
}

// ListByProduct historia de movimientos de un producto (vigentes y
// retirados), más recientes primero.
func (uc *MovementQueryUseCase) ListByProduct(productID string, page dto.PageRequest) ([]*dto.MovementResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	movs, err := uc.movements.ListByProduct(productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse mapea la entidad al DTO HTTP.
func ToMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Direction:    m.Direction,
		Amount:       m.Amount,
		UnitCost:     m.UnitCost,
		TotalCost:    m.TotalCost,
		Reason:       m.Reason,
		Reference:    m.Reference,
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		SupersededAt: m.SupersededAt,
		RetiredBy:    m.RetiredBy,
	}
}
