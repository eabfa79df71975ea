package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kimhun645/stock-ledger-api/internal/application/dto"
	"github.com/kimhun645/stock-ledger-api/internal/application/ledger"
	"github.com/kimhun645/stock-ledger-api/internal/application/usecase"
	"github.com/kimhun645/stock-ledger-api/internal/domain"
	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
)

// LedgerService operaciones del motor del libro de stock que consume el
// handler. *ledger.Engine la satisface; los tests usan un stub.
type LedgerService interface {
	RecordMovement(ctx context.Context, in ledger.RecordInput) (*entity.StockMovement, int64, error)
	ReviseMovement(ctx context.Context, movementID string, in ledger.ReviseInput) (*entity.StockMovement, int64, error)
	RetireMovement(ctx context.Context, movementID, retiredBy string) (int64, error)
	Reconcile(ctx context.Context, productID string) (*ledger.Reconciliation, error)
	CorrectDrift(ctx context.Context, productID, correctedBy string) (*ledger.Reconciliation, error)
}

// LedgerHandler maneja las peticiones HTTP de movimientos de stock (protegido).
type LedgerHandler struct {
	svc     LedgerService
	queries *usecase.MovementQueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(svc LedgerService, queries *usecase.MovementQueryUseCase) *LedgerHandler {
	return &LedgerHandler{svc: svc, queries: queries}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, direction (IN|OUT), amount, reason, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResult
// @Router       /api/movements [post]
func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, qty, err := h.svc.RecordMovement(c.Context(), ledger.RecordInput{
		ProductID: in.ProductID,
		Direction: in.Direction,
		Amount:    in.Amount,
		UnitCost:  in.UnitCost,
		Reason:    in.Reason,
		Reference: in.Reference,
		Notes:     in.Notes,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResult{
		Movement: usecase.ToMovementResponse(mov),
		Quantity: qty,
	})
}

// ReviseMovement godoc
// @Summary      Revisar un movimiento vigente (retira el efecto anterior y aplica el nuevo)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.ReviseMovementRequest  true  "direction, amount; metadatos opcionales"
// @Success      200   {object}  dto.MovementResult
// @Router       /api/movements/{id} [put]
func (h *LedgerHandler) ReviseMovement(c *fiber.Ctx) error {
	var in dto.ReviseMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, qty, err := h.svc.ReviseMovement(c.Context(), c.Params("id"), ledger.ReviseInput{
		Direction: in.Direction,
		Amount:    in.Amount,
		UnitCost:  in.UnitCost,
		Reason:    in.Reason,
		Reference: in.Reference,
		Notes:     in.Notes,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.MovementResult{
		Movement: usecase.ToMovementResponse(mov),
		Quantity: qty,
	})
}

// RetireMovement godoc
// @Summary      Retirar un movimiento vigente (deshace su efecto, conserva el registro)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResult
// @Router       /api/movements/{id} [delete]
func (h *LedgerHandler) RetireMovement(c *fiber.Ctx) error {
	qty, err := h.svc.RetireMovement(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.MovementResult{Quantity: qty})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	list, err := h.queries.ListByProduct(c.Query("product_id"), page)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// Reconcile godoc
// @Summary      Conciliar el stock de un producto contra sus movimientos vigentes
// @Tags         reconcile
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  ledger.Reconciliation
// @Router       /api/products/{id}/reconcile [get]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.svc.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(rec)
}

// CorrectDrift godoc
// @Summary      Corregir la deriva detectada (sobrescribe el stock con el recalculado)
// @Tags         reconcile
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  ledger.Reconciliation
// @Router       /api/products/{id}/reconcile/correct [post]
func (h *LedgerHandler) CorrectDrift(c *fiber.Ctx) error {
	rec, err := h.svc.CorrectDrift(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(rec)
}

// mapDomainError traduce los errores de dominio a códigos HTTP. Los kinds
// llegan tipados desde el motor; nunca se expone el error interno del store.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInvariantViolation):
		// Distinto de INSUFFICIENT_STOCK: el operador debe conciliar, no reintentar.
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "LEDGER_INCONSISTENT", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT_RETRY", Message: err.Error()})
	case errors.Is(err, domain.ErrTimeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TIMEOUT_RETRY", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
