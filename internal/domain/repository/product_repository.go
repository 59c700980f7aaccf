package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ProductFilter filtros para listar productos de un negocio.
type ProductFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos Get devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetByNameForUpdate busca por nombre sin distinguir mayúsculas dentro del negocio y bloquea la fila.
	GetByNameForUpdate(ctx context.Context, businessID, name string) (*entity.Product, error)
	// Update actualiza nombre, precio y estado. No toca Stock.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock solo lo invoca el kardex.
	UpdateStock(ctx context.Context, productID string, stock int, updatedAt time.Time) error
	List(ctx context.Context, businessID string, filter ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, businessID string, threshold, limit int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
