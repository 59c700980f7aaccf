package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementFilter filtros del kardex. Campos vacíos o nil no filtran.
type MovementFilter struct {
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// InventoryMovementRepository define el puerto de persistencia del kardex (solo inserción y lectura).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// List devuelve movimientos del negocio del más reciente al más antiguo.
	List(ctx context.Context, businessID string, filter MovementFilter) ([]*entity.InventoryMovement, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
}
