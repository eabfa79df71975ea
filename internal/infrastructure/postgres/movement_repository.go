package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kimhun645/stock-ledger-api/internal/domain"
	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
	"github.com/kimhun645/stock-ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
// La tabla stock_movements es append-biased: se inserta y se marca
// superseded_at, nunca se borra ni se reescribe el efecto histórico.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, product_id, direction, amount, unit_cost, total_cost, reason, reference, notes, created_by, created_at, superseded_at, retired_by`

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, direction, amount, unit_cost, total_cost, reason, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Direction, movement.Amount,
		movement.UnitCost, movement.TotalCost, movement.Reason, movement.Reference,
		movement.Notes, createdBy, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (vigente o retirado).
func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := r.scanOne(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Retire marca el movimiento como retirado y registra quién lo retiró. El
// predicado superseded_at IS NULL hace la transición ACTIVE -> RETIRED
// efectiva una sola vez: un segundo intento no afecta filas y devuelve
// ErrNotFound.
func (r *MovementRepo) Retire(id string, at time.Time, by string) error {
	query := `UPDATE stock_movements SET superseded_at = $2, retired_by = $3 WHERE id = $1 AND superseded_at IS NULL`
	retiredBy := (*string)(nil)
	if by != "" {
		retiredBy = &by
	}
	tag, err := r.q.Exec(context.Background(), query, id, at, retiredBy)
	if err != nil {
		return fmt.Errorf("retire movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct lista los movimientos de un producto (vigentes y retirados),
// más recientes primero.
func (r *MovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListEffectiveByProduct devuelve los movimientos vigentes del producto en
// orden de creación ascendente: el orden de replay de la conciliación.
func (r *MovementRepo) ListEffectiveByProduct(productID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1 AND superseded_at IS NULL
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list effective movements: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *MovementRepo) scanOne(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var createdBy, retiredBy *string
	if err := row.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Amount, &m.UnitCost,
		&m.TotalCost, &m.Reason, &m.Reference, &m.Notes, &createdBy,
		&m.CreatedAt, &m.SupersededAt, &retiredBy); err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	if retiredBy != nil {
		m.RetiredBy = *retiredBy
	}
	return &m, nil
}

func (r *MovementRepo) scanAll(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
