package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/application/checkout"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
)

// UseCase gestiona carritos identificados por ID. El carrito no reserva stock:
// descartarlo o dejarlo expirar no afecta el inventario.
type UseCase struct {
	store    repository.CartStore
	products repository.ProductRepository
	checkout *checkout.UseCase
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(store repository.CartStore, products repository.ProductRepository, checkoutUC *checkout.UseCase) *UseCase {
	return &UseCase{store: store, products: products, checkout: checkoutUC, now: time.Now}
}

// Create abre un carrito vacío para el actor.
func (uc *UseCase) Create(ctx context.Context, actor tenant.Actor) (*entity.Cart, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	c := entity.NewCart(uuid.New().String(), actor.BusinessID, actor.UserID, uc.now())
	if err := uc.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Get devuelve el carrito si pertenece al negocio del actor.
func (uc *UseCase) Get(ctx context.Context, actor tenant.Actor, id string) (*entity.Cart, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	c, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: carrito %s", domain.ErrNotFound, id)
	}
	if err := tenant.Authorize(actor, c.BusinessID); err != nil {
		return nil, err
	}
	return c, nil
}

// AddLine agrega quantity unidades del producto al final del carrito, capturando nombre y precio.
func (uc *UseCase) AddLine(ctx context.Context, actor tenant.Actor, id, productID string, quantity int) (*entity.Cart, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if err := tenant.Authorize(actor, p.BusinessID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, actor, id, func(c *entity.Cart) error {
		return c.AddLine(p, quantity)
	})
}

// RemoveLine elimina la línea index (0-based).
func (uc *UseCase) RemoveLine(ctx context.Context, actor tenant.Actor, id string, index int) (*entity.Cart, error) {
	return uc.mutate(ctx, actor, id, func(c *entity.Cart) error {
		return c.RemoveLine(index)
	})
}

// Clear vacía el carrito sin descartarlo.
func (uc *UseCase) Clear(ctx context.Context, actor tenant.Actor, id string) (*entity.Cart, error) {
	return uc.mutate(ctx, actor, id, func(c *entity.Cart) error {
		c.Clear()
		return nil
	})
}

// Discard elimina el carrito.
func (uc *UseCase) Discard(ctx context.Context, actor tenant.Actor, id string) error {
	if _, err := uc.Get(ctx, actor, id); err != nil {
		return err
	}
	return uc.store.Delete(ctx, id)
}

// Checkout confirma el carrito como venta. Con éxito el carrito queda vacío;
// con error queda tal cual estaba.
func (uc *UseCase) Checkout(ctx context.Context, actor tenant.Actor, id string) (*entity.Sale, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var sale *entity.Sale
	err := uc.store.Update(ctx, id, func(c *entity.Cart) error {
		if err := tenant.Authorize(actor, c.BusinessID); err != nil {
			return err
		}
		s, err := uc.checkout.Checkout(ctx, actor, c)
		if err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (uc *UseCase) mutate(ctx context.Context, actor tenant.Actor, id string, fn func(c *entity.Cart) error) (*entity.Cart, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var out *entity.Cart
	err := uc.store.Update(ctx, id, func(c *entity.Cart) error {
		if err := tenant.Authorize(actor, c.BusinessID); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = uc.now()
		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
