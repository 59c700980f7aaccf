package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// BusinessRepository negocios. El alta real pertenece al servicio de cuentas;
// Ensure solo existe para sembrar entornos de desarrollo.
type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	Ensure(ctx context.Context, b *entity.Business) error
}
