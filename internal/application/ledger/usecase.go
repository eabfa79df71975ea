package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kimhun645/stock-ledger-api/internal/domain"
	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
	domledger "github.com/kimhun645/stock-ledger-api/internal/domain/ledger"
	"github.com/kimhun645/stock-ledger-api/internal/domain/repository"
	"github.com/kimhun645/stock-ledger-api/pkg/logger"
)

// Engine es el motor del libro de stock: registra, revisa y retira movimientos
// de forma transaccional, con bloqueo de fila del producto (SELECT FOR UPDATE)
// y Commit/Rollback. Garantiza que quantity_on_hand sea siempre la suma de los
// movimientos vigentes y nunca negativo; ninguna ruta de salida deja efectos
// parciales.
type Engine struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewEngine construye el motor.
func NewEngine(txRunner TxRunner, log *logger.Logger) *Engine {
	return &Engine{txRunner: txRunner, log: log}
}

// RecordInput entrada para registrar un movimiento de stock.
// UnitCost es obligatorio en entradas (IN); en salidas se toma el costo
// promedio vigente del producto.
type RecordInput struct {
	ProductID string
	Direction string
	Amount    int64
	UnitCost  *decimal.Decimal
	Reason    string
	Reference string
	Notes     string
	CreatedBy string
}

// ReviseInput entrada para revisar un movimiento existente: nueva dirección y
// cantidad; el resto de metadatos reemplaza al del movimiento original si viene.
type ReviseInput struct {
	Direction string
	Amount    int64
	UnitCost  *decimal.Decimal
	Reason    string
	Reference string
	Notes     string
	CreatedBy string
}

func (in RecordInput) validate() error {
	if in.ProductID == "" {
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidDirection(in.Direction) {
		return fmt.Errorf("%w: dirección desconocida %q", domain.ErrInvalidInput, in.Direction)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if in.Reason == "" {
		return fmt.Errorf("%w: reason requerido", domain.ErrInvalidInput)
	}
	if in.Direction == entity.DirectionIN && (in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero)) {
		return fmt.Errorf("%w: unit_cost requerido en entradas", domain.ErrInvalidInput)
	}
	return nil
}

func (in ReviseInput) validate() error {
	if !entity.ValidDirection(in.Direction) {
		return fmt.Errorf("%w: dirección desconocida %q", domain.ErrInvalidInput, in.Direction)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	return nil
}

// RecordMovement registra un movimiento y actualiza el stock del producto en
// una sola transacción. Si el resultado fuera negativo devuelve
// InsufficientStockError y no persiste nada.
func (e *Engine) RecordMovement(ctx context.Context, in RecordInput) (*entity.StockMovement, int64, error) {
	if err := in.validate(); err != nil {
		return nil, 0, err
	}

	now := time.Now()
	var (
		committed *entity.StockMovement
		newQty    int64
	)
	err := e.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		// Bloquea la fila del producto: serializa todo movimiento concurrente
		// sobre este producto sin tocar los demás.
		product, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}

		delta := domledger.Apply(in.Direction, in.Amount)
		candidate := product.QuantityOnHand + delta
		if candidate < 0 {
			return &domain.InsufficientStockError{
				ProductID: in.ProductID,
				Requested: in.Amount,
				Available: product.QuantityOnHand,
			}
		}

		mov := e.buildMovement(in, product, now)
		if err := movRepo.Create(mov); err != nil {
			return err
		}

		if in.Direction == entity.DirectionIN {
			newCost := domledger.WeightedAverageCost(product.QuantityOnHand, product.Cost, in.Amount, *in.UnitCost)
			if err := productRepo.UpdateQuantityAndCost(in.ProductID, candidate, newCost); err != nil {
				return err
			}
		} else if err := productRepo.UpdateQuantity(in.ProductID, candidate); err != nil {
			return err
		}

		committed = mov
		newQty = candidate
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return committed, newQty, nil
}

// ReviseMovement reemplaza el efecto de un movimiento vigente por uno nuevo en
// una sola transacción: deshace el efecto anterior, aplica el nuevo, retira el
// movimiento original y registra el revisado. Equivale a retirar y volver a
// registrar, sin estado intermedio visible.
func (e *Engine) ReviseMovement(ctx context.Context, movementID string, in ReviseInput) (*entity.StockMovement, int64, error) {
	if movementID == "" {
		return nil, 0, fmt.Errorf("%w: movement_id requerido", domain.ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return nil, 0, err
	}

	now := time.Now()
	var (
		committed *entity.StockMovement
		newQty    int64
	)
	err := e.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		old, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if old == nil {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
		}
		if !old.Effective() {
			return fmt.Errorf("%w: el movimiento %s ya fue retirado", domain.ErrInvalidInput, movementID)
		}

		product, err := productRepo.GetForUpdate(old.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, old.ProductID)
		}

		undo := domledger.Reverse(old.Direction, old.Amount)
		redo := domledger.Apply(in.Direction, in.Amount)
		candidate := product.QuantityOnHand + undo + redo
		if candidate < 0 {
			return &domain.InsufficientStockError{
				ProductID: old.ProductID,
				Requested: in.Amount,
				Available: product.QuantityOnHand + undo,
			}
		}

		// La revisión retira el original; quien revisa es quien retira.
		if err := movRepo.Retire(old.ID, now, coalesce(in.CreatedBy, old.CreatedBy)); err != nil {
			return err
		}
		// El costo unitario del movimiento revisado: el indicado, o el del
		// movimiento original si no viene.
		unitCost := old.UnitCost
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
		}
		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: old.ProductID,
			Direction: in.Direction,
			Amount:    in.Amount,
			UnitCost:  unitCost,
			TotalCost: decimal.NewFromInt(in.Amount).Mul(unitCost),
			Reason:    coalesce(in.Reason, old.Reason),
			Reference: coalesce(in.Reference, old.Reference),
			Notes:     coalesce(in.Notes, old.Notes),
			CreatedBy: coalesce(in.CreatedBy, old.CreatedBy),
			CreatedAt: now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		if err := productRepo.UpdateQuantity(old.ProductID, candidate); err != nil {
			return err
		}

		committed = mov
		newQty = candidate
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return committed, newQty, nil
}

// RetireMovement retira el efecto de un movimiento vigente sin reemplazo, en
// una sola transacción, registrando quién lo retiró. Si deshacerlo dejara el
// stock negativo devuelve InvariantViolationError: con la contabilidad
// correcta un undo nunca choca con la regla de no-negatividad, así que esto
// delata deriva previa y el operador debe conciliar en vez de reintentar.
func (e *Engine) RetireMovement(ctx context.Context, movementID, retiredBy string) (int64, error) {
	if movementID == "" {
		return 0, fmt.Errorf("%w: movement_id requerido", domain.ErrInvalidInput)
	}

	now := time.Now()
	var newQty int64
	err := e.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		mov, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
		}
		if !mov.Effective() {
			return fmt.Errorf("%w: el movimiento %s ya fue retirado", domain.ErrInvalidInput, movementID)
		}

		product, err := productRepo.GetForUpdate(mov.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, mov.ProductID)
		}

		undo := domledger.Reverse(mov.Direction, mov.Amount)
		candidate := product.QuantityOnHand + undo
		if candidate < 0 {
			return &domain.InvariantViolationError{
				ProductID:  mov.ProductID,
				MovementID: mov.ID,
				Stored:     product.QuantityOnHand,
				Undo:       undo,
			}
		}

		if err := movRepo.Retire(mov.ID, now, retiredBy); err != nil {
			return err
		}
		if err := productRepo.UpdateQuantity(mov.ProductID, candidate); err != nil {
			return err
		}
		newQty = candidate
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// buildMovement arma la entidad con ID, costos y timestamps. En salidas el
// costo unitario es el promedio vigente del producto.
func (e *Engine) buildMovement(in RecordInput, product *entity.Product, now time.Time) *entity.StockMovement {
	unitCost := product.Cost
	if in.Direction == entity.DirectionIN && in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	return &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Direction: in.Direction,
		Amount:    in.Amount,
		UnitCost:  unitCost,
		TotalCost: decimal.NewFromInt(in.Amount).Mul(unitCost),
		Reason:    in.Reason,
		Reference: in.Reference,
		Notes:     in.Notes,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
	}
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
