package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// SellOneRequest venta directa de un producto sin carrito.
type SellOneRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// SaleItemResponse línea de una venta.
type SaleItemResponse struct {
	Line        int             `json:"line"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// SaleResponse salida de una venta. Items se omite en los listados.
type SaleResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Total     decimal.Decimal    `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []SaleItemResponse `json:"items,omitempty"`
}

// SaleListResponse lista paginada de ventas, más recientes primero.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// NewSaleResponse mapea la venta (con sus líneas si están cargadas).
func NewSaleResponse(s *entity.Sale) SaleResponse {
	out := SaleResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, SaleItemResponse{
			Line:        it.Line,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Total:       it.Total,
		})
	}
	return out
}

// NewSaleList mapea una página de ventas.
func NewSaleList(sales []*entity.Sale, limit, offset int) SaleListResponse {
	items := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		items = append(items, NewSaleResponse(s))
	}
	return SaleListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset, Count: len(items)}}
}
