package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// SaleFilter filtros para listar ventas.
type SaleFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// SalesTotals agregado de ventas en un rango.
type SalesTotals struct {
	Count int
	Total decimal.Decimal
}

// ProductSales unidades e ingresos por producto (nombre capturado en la venta).
type ProductSales struct {
	ProductName string
	Quantity    int
	Income      decimal.Decimal
}

// SaleRepository define el puerto de persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	UpdateTotal(ctx context.Context, saleID string, total decimal.Decimal) error
	// GetByID devuelve la cabecera sin líneas, (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// ListItems devuelve las líneas en orden de Line.
	ListItems(ctx context.Context, saleID string) ([]entity.SaleItem, error)
	// List devuelve cabeceras del negocio de la más reciente a la más antigua.
	List(ctx context.Context, businessID string, filter SaleFilter) ([]*entity.Sale, error)
	CountItemsByProduct(ctx context.Context, productID string) (int, error)
	Totals(ctx context.Context, businessID string, from, to time.Time) (SalesTotals, error)
	TopProducts(ctx context.Context, businessID string, from time.Time, limit int) ([]ProductSales, error)
}
