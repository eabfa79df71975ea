package ledger

import (
	"context"

	"github.com/kimhun645/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la unidad atómica del motor: commit si fn
// devuelve nil, rollback ante cualquier error. Toda lectura-modificación-
// escritura del libro de stock pasa por aquí, incluidas las rutas de fallo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
