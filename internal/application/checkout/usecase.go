package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/ports"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
)

// SaleNote nota de los movimientos de salida generados por una venta.
func SaleNote(saleID string) string {
	return fmt.Sprintf("Venta #%s", saleID)
}

// UseCase confirma ventas: valida todas las líneas contra el catálogo y aplica las salidas
// del kardex, la cabecera y las líneas de la venta en una sola transacción.
type UseCase struct {
	txRunner  repository.TxRunner
	ledger    *appinventory.LedgerUseCase
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	log       zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewUseCase construye el caso de uso. publisher y metrics pueden ser nil.
func NewUseCase(
	txRunner repository.TxRunner,
	ledger *appinventory.LedgerUseCase,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	log zerolog.Logger,
) *UseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		tracer:    otel.Tracer("kardex-api/checkout"),
		now:       time.Now,
	}
}

// lineRequest línea a vender. Si captured es false, nombre y precio se toman del producto bloqueado.
type lineRequest struct {
	productID string
	quantity  int
	name      string
	unitPrice decimal.Decimal
	captured  bool
}

// Checkout convierte el carrito en una venta. Si devuelve error no se persistió nada
// y el carrito queda intacto; si no, el carrito queda vacío.
func (uc *UseCase) Checkout(ctx context.Context, actor tenant.Actor, cart *entity.Cart) (*entity.Sale, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if cart == nil || cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	if err := tenant.Authorize(actor, cart.BusinessID); err != nil {
		return nil, err
	}
	lines := make([]lineRequest, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, lineRequest{
			productID: l.ProductID,
			quantity:  l.Quantity,
			name:      l.ProductName,
			unitPrice: l.UnitPrice,
			captured:  true,
		})
	}
	sale, err := uc.commit(ctx, actor, lines)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	cart.UpdatedAt = sale.CreatedAt
	return sale, nil
}

// SellOne vende un solo producto; nombre y precio se capturan del producto bloqueado.
func (uc *UseCase) SellOne(ctx context.Context, actor tenant.Actor, productID string, quantity int) (*entity.Sale, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrValidation)
	}
	return uc.commit(ctx, actor, []lineRequest{{productID: productID, quantity: quantity}})
}

func (uc *UseCase) commit(ctx context.Context, actor tenant.Actor, lines []lineRequest) (*entity.Sale, error) {
	started := time.Now()
	ctx, span := uc.tracer.Start(ctx, "checkout.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("business.id", actor.BusinessID),
		attribute.Int("checkout.lines", len(lines)),
	)

	var (
		sale *entity.Sale
		movs []*entity.InventoryMovement
	)
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var err error
		sale, movs, err = uc.applyInTx(ctx, tx, actor, lines)
		return err
	})
	uc.metrics.ObserveCheckout(outcome(err), len(lines), time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("sale.id", sale.ID),
		attribute.String("sale.total", sale.Total.StringFixed(2)),
	)
	span.SetStatus(codes.Ok, "venta confirmada")

	uc.ledger.AfterCommit(ctx, movs...)
	if err := uc.publisher.PublishSaleCompleted(ctx, SaleEvent(sale)); err != nil {
		uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("publicar venta confirmada")
	}
	uc.log.Debug().
		Str("sale_id", sale.ID).
		Str("business_id", sale.BusinessID).
		Int("items", len(sale.Items)).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta confirmada")
	return sale, nil
}

func (uc *UseCase) applyInTx(ctx context.Context, tx repository.Tx, actor tenant.Actor, lines []lineRequest) (*entity.Sale, []*entity.InventoryMovement, error) {
	now := uc.now()
	sale := &entity.Sale{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		UserID:     actor.UserID,
		Total:      decimal.Zero,
		CreatedAt:  now,
	}
	if err := tx.Sales.Create(ctx, sale); err != nil {
		return nil, nil, err
	}

	// Bloqueo en orden de ID para evitar deadlocks entre checkouts concurrentes.
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.productID] {
			seen[l.productID] = true
			ids = append(ids, l.productID)
		}
	}
	sort.Strings(ids)
	locked := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := tx.Products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if p != nil {
			locked[id] = p
		}
	}

	// Validación completa antes de escribir, en el orden del carrito.
	requested := make(map[string]int, len(ids))
	for i, l := range lines {
		p := locked[l.productID]
		if p == nil {
			return nil, nil, fmt.Errorf("%w: línea %d (%s)", domain.ErrProductNotFound, i+1, l.productID)
		}
		if err := tenant.Authorize(actor, p.BusinessID); err != nil {
			return nil, nil, err
		}
		if !p.IsActive {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrInactiveProduct, p.Name)
		}
		if l.quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrValidation, i+1, l.quantity)
		}
		requested[p.ID] += l.quantity
		if p.Stock < requested[p.ID] {
			return nil, nil, fmt.Errorf("%w: %s (disponible %d, solicitado %d)",
				domain.ErrInsufficientStock, p.Name, p.Stock, requested[p.ID])
		}
	}

	note := SaleNote(sale.ID)
	movs := make([]*entity.InventoryMovement, 0, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		p := locked[l.productID]
		name, price := l.name, l.unitPrice
		if !l.captured {
			name, price = p.Name, p.Price
		}
		mov, err := uc.ledger.ApplyInTx(ctx, tx, actor, p, entity.MovementOut, l.quantity, note, sale.ID)
		if err != nil {
			return nil, nil, err
		}
		movs = append(movs, mov)
		item := entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			Line:        i + 1,
			ProductID:   p.ID,
			ProductName: name,
			UnitPrice:   price,
			Quantity:    l.quantity,
			Total:       entity.LineTotal(price, l.quantity),
		}
		if err := tx.Sales.CreateItem(ctx, &item); err != nil {
			return nil, nil, err
		}
		sale.Items = append(sale.Items, item)
		total = total.Add(item.Total)
	}
	sale.Total = total
	if err := tx.Sales.UpdateTotal(ctx, sale.ID, total); err != nil {
		return nil, nil, err
	}
	return sale, movs, nil
}

// SaleEvent traduce una venta confirmada al evento publicado.
func SaleEvent(s *entity.Sale) ports.SaleCompletedEvent {
	items := make([]ports.SaleItemEvent, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ports.SaleItemEvent{
			Line:        it.Line,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Total:       it.Total,
		})
	}
	return ports.SaleCompletedEvent{
		SaleID:     s.ID,
		BusinessID: s.BusinessID,
		UserID:     s.UserID,
		Total:      s.Total,
		Items:      items,
		OccurredAt: s.CreatedAt,
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientStock):
		return ports.OutcomeInsufficient
	case errors.Is(err, domain.ErrStorage):
		return ports.OutcomeError
	default:
		return ports.OutcomeRejected
	}
}
