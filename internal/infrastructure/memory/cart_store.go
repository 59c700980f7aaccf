package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.CartStore = (*CartStore)(nil)

type cartEntry struct {
	mu      sync.Mutex
	cart    *entity.Cart
	deleted bool
	touched atomic.Int64 // unix nano del último acceso
}

// CartStore carritos en memoria con bloqueo por carrito y expiración por inactividad.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*cartEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewCartStore crea el almacén. ttl <= 0 desactiva la expiración.
func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{
		carts: make(map[string]*cartEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create registra un carrito nuevo.
func (s *CartStore) Create(_ context.Context, c *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[c.ID]; ok {
		return fmt.Errorf("%w: carrito %s ya existe", domain.ErrConflict, c.ID)
	}
	e := &cartEntry{cart: c.Clone()}
	e.touched.Store(s.now().UnixNano())
	s.carts[c.ID] = e
	return nil
}

// Get devuelve una copia del carrito o (nil, nil) si no existe o expiró.
func (s *CartStore) Get(_ context.Context, id string) (*entity.Cart, error) {
	e := s.entry(id)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, nil
	}
	e.touched.Store(s.now().UnixNano())
	return e.cart.Clone(), nil
}

// Update ejecuta fn con el carrito bloqueado sobre una copia; la guarda solo si fn devuelve nil.
func (s *CartStore) Update(_ context.Context, id string, fn func(c *entity.Cart) error) error {
	e := s.entry(id)
	if e == nil {
		return fmt.Errorf("%w: carrito %s", domain.ErrNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return fmt.Errorf("%w: carrito %s", domain.ErrNotFound, id)
	}
	work := e.cart.Clone()
	if err := fn(work); err != nil {
		return err
	}
	e.cart = work
	e.touched.Store(s.now().UnixNano())
	return nil
}

// Delete descarta el carrito. Descartar uno inexistente no es error.
func (s *CartStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.carts[id]
	delete(s.carts, id)
	s.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.deleted = true
		e.mu.Unlock()
	}
	return nil
}

// Sweep elimina los carritos inactivos por más de ttl y devuelve cuántos eliminó.
func (s *CartStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.carts {
		if s.expired(e) {
			delete(s.carts, id)
			n++
		}
	}
	return n
}

// Len cantidad de carritos vivos.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *CartStore) entry(id string) *cartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.carts[id]
	if !ok {
		return nil
	}
	if s.expired(e) {
		delete(s.carts, id)
		return nil
	}
	return e
}

func (s *CartStore) expired(e *cartEntry) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, e.touched.Load())) > s.ttl
}
