package ledger_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kimhun645/stock-ledger-api/internal/domain"
	"github.com/kimhun645/stock-ledger-api/internal/domain/entity"
	"github.com/kimhun645/stock-ledger-api/internal/domain/repository"
)

// memStore es un backing store en memoria para probar el motor sin PostgreSQL.
// Reproduce la semántica de la transacción real: GetForUpdate toma un lock por
// producto (como SELECT ... FOR UPDATE, sin serializar productos distintos
// entre sí) que se libera al terminar Run, y el rollback restaura el estado
// previo de las filas tocadas por la transacción.
type memStore struct {
	mu       sync.Mutex // protege los mapas; no serializa transacciones
	rowLocks map[string]*sync.Mutex
	products map[string]*entity.Product
	movs     map[string]*entity.StockMovement
	order    []string // ids de movimiento en orden de creación

	// inyección de fallos para probar atomicidad
	failCreateMovement error
	failUpdateQuantity error
}

func newMemStore() *memStore {
	return &memStore{
		rowLocks: make(map[string]*sync.Mutex),
		products: make(map[string]*entity.Product),
		movs:     make(map[string]*entity.StockMovement),
	}
}

func (s *memStore) addProduct(id string, qty int64) {
	s.products[id] = &entity.Product{
		ID: id, SKU: "SKU-" + id, Name: "producto " + id,
		QuantityOnHand: qty,
		Price:          decimal.Zero, Cost: decimal.Zero,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func (s *memStore) rowLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

// memTx lleva los locks de fila tomados y un journal del estado previo de lo
// que la transacción mutó, para deshacerlo si fn falla.
type memTx struct {
	s            *memStore
	locked       []*sync.Mutex
	prevProducts map[string]entity.Product
	prevMovs     map[string]entity.StockMovement
	createdMovs  []string
}

// Run implementa ledger.TxRunner.
func (s *memStore) Run(_ context.Context, fn func(repository.MovementRepository, repository.ProductRepository) error) error {
	tx := &memTx{
		s:            s,
		prevProducts: make(map[string]entity.Product),
		prevMovs:     make(map[string]entity.StockMovement),
	}
	err := fn(&memMovementRepo{tx: tx}, &memProductRepo{tx: tx})
	if err != nil {
		tx.rollback()
	}
	for _, l := range tx.locked {
		l.Unlock()
	}
	return err
}

func (tx *memTx) rollback() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for id, prev := range tx.prevProducts {
		cp := prev
		tx.s.products[id] = &cp
	}
	for id, prev := range tx.prevMovs {
		cp := prev
		tx.s.movs[id] = &cp
	}
	if len(tx.createdMovs) > 0 {
		created := make(map[string]bool, len(tx.createdMovs))
		for _, id := range tx.createdMovs {
			created[id] = true
			delete(tx.s.movs, id)
		}
		order := tx.s.order[:0]
		for _, id := range tx.s.order {
			if !created[id] {
				order = append(order, id)
			}
		}
		tx.s.order = order
	}
}

// journalProduct guarda el estado previo de la fila la primera vez que la
// transacción la muta.
func (tx *memTx) journalProduct(id string) {
	if _, ok := tx.prevProducts[id]; ok {
		return
	}
	if p, ok := tx.s.products[id]; ok {
		tx.prevProducts[id] = *p
	}
}

func (tx *memTx) journalMovement(id string) {
	if _, ok := tx.prevMovs[id]; ok {
		return
	}
	if m, ok := tx.s.movs[id]; ok {
		tx.prevMovs[id] = *m
	}
}

type memProductRepo struct{ tx *memTx }

func (r *memProductRepo) Create(p *entity.Product) error {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetForUpdate toma el lock de la fila del producto hasta el final de Run.
// Productos distintos usan locks distintos y no se bloquean entre sí.
func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	l := r.tx.s.rowLock(id)
	l.Lock()
	r.tx.locked = append(r.tx.locked, l)
	return r.GetByID(id)
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Product
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProductRepo) UpdateQuantity(id string, quantity int64) error {
	s := r.tx.s
	if s.failUpdateQuantity != nil {
		return s.failUpdateQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.tx.journalProduct(id)
	p.QuantityOnHand = quantity
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memProductRepo) UpdateQuantityAndCost(id string, quantity int64, cost decimal.Decimal) error {
	if err := r.UpdateQuantity(id, quantity); err != nil {
		return err
	}
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].Cost = cost
	return nil
}

type memMovementRepo struct{ tx *memTx }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	s := r.tx.s
	if s.failCreateMovement != nil {
		return s.failCreateMovement
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.movs[m.ID] = &cp
	s.order = append(s.order, m.ID)
	r.tx.createdMovs = append(r.tx.createdMovs, m.ID)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movs[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMovementRepo) Retire(id string, at time.Time, by string) error {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movs[id]
	if !ok || m.SupersededAt != nil {
		return domain.ErrNotFound
	}
	r.tx.journalMovement(id)
	m.SupersededAt = &at
	m.RetiredBy = by
	return nil
}

func (r *memMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMovement
	for _, id := range s.order {
		if m := s.movs[id]; m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListEffectiveByProduct(productID string) ([]*entity.StockMovement, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMovement
	for _, id := range s.order {
		if m := s.movs[id]; m.ProductID == productID && m.SupersededAt == nil {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

var errInjected = errors.New("fallo inyectado")
