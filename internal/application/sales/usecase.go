package sales

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/ports"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
)

// Paginación de ventas.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

const dateLayout = "2006-01-02"

// UseCase lectura de ventas confirmadas y generación del ticket.
type UseCase struct {
	sales      repository.SaleRepository
	businesses repository.BusinessRepository
	tickets    ports.TicketGenerator
}

// NewUseCase construye el caso de uso. tickets puede ser nil si no se sirve el PDF.
func NewUseCase(sales repository.SaleRepository, businesses repository.BusinessRepository, tickets ports.TicketGenerator) *UseCase {
	return &UseCase{sales: sales, businesses: businesses, tickets: tickets}
}

// ListSales lista cabeceras del negocio del actor, de la más reciente a la más antigua.
func (uc *UseCase) ListSales(ctx context.Context, actor tenant.Actor, filter repository.SaleFilter) ([]*entity.Sale, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrValidation)
	}
	filter.Limit = appinventory.NormalizeLimit(filter.Limit, DefaultListLimit, MaxListLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.sales.List(ctx, actor.BusinessID, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Sale{}
	}
	return list, nil
}

// GetSale devuelve la venta con sus líneas en orden de carrito.
func (uc *UseCase) GetSale(ctx context.Context, actor tenant.Actor, id string) (*entity.Sale, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	if err := tenant.Authorize(actor, s.BusinessID); err != nil {
		return nil, err
	}
	items, err := uc.sales.ListItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

// Ticket genera el comprobante PDF de la venta.
func (uc *UseCase) Ticket(ctx context.Context, actor tenant.Actor, id string) ([]byte, error) {
	if uc.tickets == nil {
		return nil, fmt.Errorf("%w: generador de tickets no configurado", domain.ErrNotFound)
	}
	s, err := uc.GetSale(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	biz, err := uc.businesses.GetByID(ctx, s.BusinessID)
	if err != nil {
		return nil, err
	}
	if biz == nil {
		biz = &entity.Business{ID: s.BusinessID}
	}
	return uc.tickets.GenerateTicket(ctx, biz, s)
}

// ParseDateRange interpreta from/to como RFC3339 o YYYY-MM-DD (vacío = sin límite).
// Un to con solo fecha incluye el día completo hasta las 23:59:59.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var fromT, toT *time.Time
	if from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: from %q", domain.ErrValidation, from)
		}
		fromT = &t
	}
	if to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: to %q", domain.ErrValidation, to)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Second)
		}
		toT = &t
	}
	if fromT != nil && toT != nil && fromT.After(*toT) {
		return nil, nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrValidation)
	}
	return fromT, toT, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}
