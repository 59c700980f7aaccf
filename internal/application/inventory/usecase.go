package inventory

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/kardex-api/internal/application/ports"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
)

// Límites de paginación del kardex.
const (
	DefaultMovementLimit = 50
	MaxMovementLimit     = 500
)

// LedgerUseCase es el único escritor de products.stock: cada cambio queda respaldado
// por un movimiento inmutable escrito en la misma transacción.
type LedgerUseCase struct {
	txRunner  repository.TxRunner
	movements repository.InventoryMovementRepository
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	log       zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. publisher y metrics pueden ser nil.
func NewLedgerUseCase(
	txRunner repository.TxRunner,
	movements repository.InventoryMovementRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	log zerolog.Logger,
) *LedgerUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &LedgerUseCase{
		txRunner:  txRunner,
		movements: movements,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		tracer:    otel.Tracer("kardex-api/inventory"),
		now:       time.Now,
	}
}

// MovementInput entrada de un movimiento manual.
// Para in/out Quantity es la cantidad; para adjust es el stock final deseado.
type MovementInput struct {
	ProductID string
	Type      string
	Quantity  int
	Note      string
}

// ApplyMovement abre una transacción, bloquea la fila del producto (SELECT FOR UPDATE),
// verifica el negocio y aplica el movimiento. Commit o Rollback lo resuelve el TxRunner.
func (uc *LedgerUseCase) ApplyMovement(ctx context.Context, actor tenant.Actor, in MovementInput) (*entity.InventoryMovement, error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.apply_movement")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("movement.type", in.Type),
		attribute.Int("movement.value", in.Quantity),
	)

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrValidation)
	}

	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		product, err := tx.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
		}
		if err := tenant.Authorize(actor, product.BusinessID); err != nil {
			return err
		}
		mov, err = uc.ApplyInTx(ctx, tx, actor, product, in.Type, in.Quantity, in.Note, "")
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("stock.after", mov.StockAfter))
	span.SetStatus(codes.Ok, "movimiento registrado")
	uc.AfterCommit(ctx, mov)
	return mov, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de la transacción del llamador.
// product debe venir bloqueado por el llamador; su Stock se actualiza en memoria al valor final.
// Si retorna error el llamador debe abortar la transacción.
func (uc *LedgerUseCase) ApplyInTx(
	ctx context.Context,
	tx repository.Tx,
	actor tenant.Actor,
	product *entity.Product,
	movementType string,
	value int,
	note, saleID string,
) (*entity.InventoryMovement, error) {
	change, err := inventory.Compute(movementType, product.Stock, value)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if err := tx.Products.UpdateStock(ctx, product.ID, change.StockAfter, now); err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		BusinessID:  product.BusinessID,
		ProductID:   product.ID,
		UserID:      actor.UserID,
		SaleID:      saleID,
		Type:        movementType,
		Quantity:    change.Quantity,
		StockBefore: change.StockBefore,
		StockAfter:  change.StockAfter,
		Note:        trimNote(note),
		CreatedAt:   now,
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	product.Stock = change.StockAfter
	product.UpdatedAt = now
	return mov, nil
}

// AfterCommit publica y contabiliza movimientos ya confirmados. Los fallos solo se registran en el log.
func (uc *LedgerUseCase) AfterCommit(ctx context.Context, movs ...*entity.InventoryMovement) {
	if len(movs) == 0 {
		return
	}
	events := make([]ports.MovementRecordedEvent, 0, len(movs))
	for _, m := range movs {
		uc.metrics.IncMovement(m.Type)
		events = append(events, MovementEvent(m))
	}
	if err := uc.publisher.PublishMovementRecorded(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Int("movements", len(events)).Msg("publicar movimientos de inventario")
	}
}

// ListMovements devuelve el kardex del negocio del actor, del más reciente al más antiguo.
// Cada llamada lee el estado confirmado; el resultado es finito (Limit acotado).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, actor tenant.Actor, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if filter.Type != "" && !entity.IsValidMovementType(filter.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrValidation, filter.Type)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrValidation)
	}
	filter.Limit = NormalizeLimit(filter.Limit, DefaultMovementLimit, MaxMovementLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.movements.List(ctx, actor.BusinessID, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.InventoryMovement{}
	}
	return list, nil
}

// MovementEvent traduce un movimiento al evento publicado.
func MovementEvent(m *entity.InventoryMovement) ports.MovementRecordedEvent {
	return ports.MovementRecordedEvent{
		MovementID:  m.ID,
		BusinessID:  m.BusinessID,
		ProductID:   m.ProductID,
		UserID:      m.UserID,
		SaleID:      m.SaleID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Note:        m.Note,
		OccurredAt:  m.CreatedAt,
	}
}

// NormalizeLimit aplica el valor por defecto y el máximo a un límite de página.
func NormalizeLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func trimNote(note string) string {
	if utf8.RuneCountInString(note) <= entity.MaxMovementNote {
		return note
	}
	return string([]rune(note)[:entity.MaxMovementNote])
}
