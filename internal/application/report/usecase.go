package report

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
)

// Valores por defecto del resumen.
const (
	DefaultDays          = 7
	DefaultLowThreshold  = 5
	TopProductsLimit     = 10
	lowStockSummaryLimit = 50
)

// Summary resumen de ventas e inventario de un negocio.
type Summary struct {
	Days         int
	Today        repository.SalesTotals
	Period       repository.SalesTotals
	TopProducts  []repository.ProductSales
	LowThreshold int
	LowStock     []*entity.Product
}

// UseCase reportes de lectura sobre ventas y stock.
type UseCase struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(sales repository.SaleRepository, products repository.ProductRepository) *UseCase {
	return &UseCase{sales: sales, products: products, now: time.Now}
}

// Summary ventas de hoy (UTC) y de los últimos days días (1, 7 o 30; otro valor usa 7),
// top 10 productos por unidades vendidas y productos con stock <= low.
func (uc *UseCase) Summary(ctx context.Context, actor tenant.Actor, days, low int) (*Summary, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if days != 1 && days != 7 && days != 30 {
		days = DefaultDays
	}
	if low < 0 {
		low = DefaultLowThreshold
	}
	now := uc.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	periodStart := now.Add(-time.Duration(days) * 24 * time.Hour)

	today, err := uc.sales.Totals(ctx, actor.BusinessID, startOfDay, now)
	if err != nil {
		return nil, err
	}
	period, err := uc.sales.Totals(ctx, actor.BusinessID, periodStart, now)
	if err != nil {
		return nil, err
	}
	top, err := uc.sales.TopProducts(ctx, actor.BusinessID, periodStart, TopProductsLimit)
	if err != nil {
		return nil, err
	}
	lowStock, err := uc.products.ListLowStock(ctx, actor.BusinessID, low, lowStockSummaryLimit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []repository.ProductSales{}
	}
	if lowStock == nil {
		lowStock = []*entity.Product{}
	}
	return &Summary{
		Days:         days,
		Today:        today,
		Period:       period,
		TopProducts:  top,
		LowThreshold: low,
		LowStock:     lowStock,
	}, nil
}
