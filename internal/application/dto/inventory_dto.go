package dto

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// RegisterMovementRequest entrada para registrar un movimiento manual.
// Para "in" y "out" quantity es la cantidad; para "adjust" es el nuevo stock absoluto.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=in out adjust"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note" validate:"max=255"`
}

// MovementResponse salida de un movimiento del kardex.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	UserID      string    `json:"user_id"`
	SaleID      string    `json:"sale_id,omitempty"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos, más recientes primero.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewMovementResponse mapea la entidad a su salida HTTP.
func NewMovementResponse(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		UserID:      m.UserID,
		SaleID:      m.SaleID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
	}
}

// NewMovementList mapea una página de movimientos.
func NewMovementList(movs []*entity.InventoryMovement, limit, offset int) MovementListResponse {
	items := make([]MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, NewMovementResponse(m))
	}
	return MovementListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset, Count: len(items)}}
}
