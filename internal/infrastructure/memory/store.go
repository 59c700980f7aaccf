// Package memory implementa los puertos de persistencia en memoria para desarrollo y pruebas.
// Las transacciones de escritura se serializan y trabajan sobre una copia del estado que solo
// se publica en el commit, con el mismo aislamiento que el bloqueo de filas en PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	businesses map[string]*entity.Business
	products   map[string]*entity.Product
	movements  []*entity.InventoryMovement // orden de inserción = seq
	sales      map[string]*entity.Sale
	saleOrder  []string
	items      map[string][]entity.SaleItem
}

func newState() *state {
	return &state{
		businesses: make(map[string]*entity.Business),
		products:   make(map[string]*entity.Product),
		sales:      make(map[string]*entity.Sale),
		items:      make(map[string][]entity.SaleItem),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for id, b := range s.businesses {
		cp.businesses[id] = b
	}
	for id, p := range s.products {
		cp.products[id] = p.Clone()
	}
	// Los movimientos son inmutables: basta copiar los punteros.
	cp.movements = append(make([]*entity.InventoryMovement, 0, len(s.movements)+4), s.movements...)
	for id, sale := range s.sales {
		h := *sale
		cp.sales[id] = &h
	}
	cp.saleOrder = append([]string(nil), s.saleOrder...)
	for id, its := range s.items {
		cp.items[id] = append([]entity.SaleItem(nil), its...)
	}
	return cp
}

// Store almacén transaccional en memoria.
type Store struct {
	txMu    sync.Mutex   // serializa transacciones de escritura
	mu      sync.RWMutex // protege current
	current *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{current: newState()}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.StorageError("begin transaction", err)
	}

	s.mu.RLock()
	work := s.current.clone()
	s.mu.RUnlock()

	if err := fn(s.bind(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.StorageError("commit transaction", err)
	}

	s.mu.Lock()
	s.current = work
	s.mu.Unlock()
	return nil
}

// Products repositorio fuera de transacción (cada escritura es su propia transacción).
func (s *Store) Products() repository.ProductRepository { return &productRepo{store: s} }

// Movements repositorio del kardex fuera de transacción.
func (s *Store) Movements() repository.InventoryMovementRepository { return &movementRepo{store: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{store: s} }

// Businesses repositorio de negocios.
func (s *Store) Businesses() repository.BusinessRepository { return &businessRepo{store: s} }

// AddBusiness registra un negocio (siembra de desarrollo y pruebas).
func (s *Store) AddBusiness(b *entity.Business) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.current.businesses[b.ID] = &cp
}

func (s *Store) bind(st *state) repository.Tx {
	return repository.Tx{
		Products:  &productRepo{store: s, tx: st},
		Movements: &movementRepo{store: s, tx: st},
		Sales:     &saleRepo{store: s, tx: st},
	}
}

// view ejecuta fn sobre el estado de la transacción o, fuera de ella, sobre el último commit.
func (s *Store) view(tx *state, fn func(st *state)) {
	if tx != nil {
		fn(tx)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.current)
}

// write ejecuta fn dentro de la transacción o en una transacción propia.
func (s *Store) write(ctx context.Context, tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.StorageError("write", err)
	}
	s.mu.RLock()
	work := s.current.clone()
	s.mu.RUnlock()
	if err := fn(work); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = work
	s.mu.Unlock()
	return nil
}

type businessRepo struct {
	store *Store
}

func (r *businessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	var out *entity.Business
	r.store.view(nil, func(st *state) {
		if b, ok := st.businesses[id]; ok {
			cp := *b
			out = &cp
		}
	})
	return out, nil
}

func (r *businessRepo) Ensure(ctx context.Context, b *entity.Business) error {
	return r.store.write(ctx, nil, func(st *state) error {
		if _, ok := st.businesses[b.ID]; !ok {
			cp := *b
			st.businesses[b.ID] = &cp
		}
		return nil
	})
}
