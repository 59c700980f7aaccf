package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CartStore resuelve el identificador de carrito de la sesión. No es transaccional con el resto del almacén.
type CartStore interface {
	Create(ctx context.Context, cart *entity.Cart) error
	// Get devuelve una copia del carrito, (nil, nil) si no existe o expiró.
	Get(ctx context.Context, id string) (*entity.Cart, error)
	// Update ejecuta fn con acceso exclusivo al carrito y guarda el resultado solo si fn devuelve nil.
	Update(ctx context.Context, id string, fn func(cart *entity.Cart) error) error
	Delete(ctx context.Context, id string) error
}
