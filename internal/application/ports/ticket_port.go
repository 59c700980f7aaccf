package ports

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// TicketGenerator genera el comprobante imprimible de una venta.
type TicketGenerator interface {
	GenerateTicket(ctx context.Context, business *entity.Business, sale *entity.Sale) ([]byte, error)
}
