package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de eventos publicados tras el commit.
const (
	EventSaleCompleted    = "sale.completed"
	EventMovementRecorded = "inventory.movement_recorded"
)

// SaleItemEvent línea de una venta confirmada.
type SaleItemEvent struct {
	Line        int             `json:"line"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// SaleCompletedEvent se emite cuando una venta queda confirmada.
type SaleCompletedEvent struct {
	SaleID     string          `json:"sale_id"`
	BusinessID string          `json:"business_id"`
	UserID     string          `json:"user_id"`
	Total      decimal.Decimal `json:"total"`
	Items      []SaleItemEvent `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// MovementRecordedEvent se emite por cada movimiento del kardex confirmado.
type MovementRecordedEvent struct {
	MovementID  string    `json:"movement_id"`
	BusinessID  string    `json:"business_id"`
	ProductID   string    `json:"product_id"`
	UserID      string    `json:"user_id"`
	SaleID      string    `json:"sale_id,omitempty"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	Note        string    `json:"note"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher puerto de salida para eventos de dominio. Solo se invoca fuera de la transacción:
// un error de publicación no revierte lo ya confirmado.
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, event SaleCompletedEvent) error
	PublishMovementRecorded(ctx context.Context, events ...MovementRecordedEvent) error
}

// NopPublisher descarta los eventos (sin broker configurado).
type NopPublisher struct{}

func (NopPublisher) PublishSaleCompleted(context.Context, SaleCompletedEvent) error { return nil }

func (NopPublisher) PublishMovementRecorded(context.Context, ...MovementRecordedEvent) error {
	return nil
}
