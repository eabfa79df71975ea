package ledger

import (
	"context"
	"fmt"

	"github.com/kimhun645/stock-ledger-api/internal/domain"
	domledger "github.com/kimhun645/stock-ledger-api/internal/domain/ledger"
	"github.com/kimhun645/stock-ledger-api/internal/domain/repository"
)

// Reconciliation resultado de conciliar un producto: stock almacenado,
// stock recalculado por replay de movimientos vigentes, y su diferencia.
type Reconciliation struct {
	ProductID  string `json:"product_id"`
	Stored     int64  `json:"stored"`
	Recomputed int64  `json:"recomputed"`
	Drift      int64  `json:"drift"` // Stored - Recomputed; 0 = cuadra
	Movements  int    `json:"movements"`
	Corrected  bool   `json:"corrected"`
}

// Reconcile recalcula el stock de un producto reproduciendo sus movimientos
// vigentes en orden de creación y reporta la deriva contra el valor
// almacenado. Solo detecta: no corrige (ver CorrectDrift). Se ejecuta dentro
// de una transacción con la fila bloqueada para leer un par (stock,
// movimientos) consistente.
func (e *Engine) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	var rec *Reconciliation
	err := e.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		r, err := e.replay(productID, movRepo, productRepo)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CorrectDrift recalcula el stock y, si hay deriva, sobreescribe el valor
// almacenado con el recalculado en su propia transacción, dejando un evento
// de auditoría en el log. Es la única mutación de stock que no nace de un
// movimiento; se invoca explícitamente por un operador.
func (e *Engine) CorrectDrift(ctx context.Context, productID, correctedBy string) (*Reconciliation, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	var rec *Reconciliation
	err := e.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		r, err := e.replay(productID, movRepo, productRepo)
		if err != nil {
			return err
		}
		if r.Drift != 0 {
			if err := productRepo.UpdateQuantity(productID, r.Recomputed); err != nil {
				return err
			}
			r.Corrected = true
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rec.Corrected {
		e.log.Warn().
			Str("product_id", productID).
			Int64("stored", rec.Stored).
			Int64("recomputed", rec.Recomputed).
			Int64("drift", rec.Drift).
			Str("corrected_by", correctedBy).
			Msg("deriva de stock corregida")
	}
	return rec, nil
}

// replay suma los deltas de los movimientos vigentes (orden de creación
// ascendente) con la fila del producto bloqueada.
func (e *Engine) replay(productID string, movRepo repository.MovementRepository, productRepo repository.ProductRepository) (*Reconciliation, error) {
	product, err := productRepo.GetForUpdate(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	movs, err := movRepo.ListEffectiveByProduct(productID)
	if err != nil {
		return nil, err
	}
	var sum int64
	for _, m := range movs {
		sum += domledger.Apply(m.Direction, m.Amount)
	}
	return &Reconciliation{
		ProductID:  productID,
		Stored:     product.QuantityOnHand,
		Recomputed: sum,
		Drift:      product.QuantityOnHand - sum,
		Movements:  len(movs),
	}, nil
}
