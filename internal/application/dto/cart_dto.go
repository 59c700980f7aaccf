package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AddCartLineRequest entrada para agregar una línea al carrito.
type AddCartLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// CartLineResponse línea del carrito con los valores capturados al agregarla.
type CartLineResponse struct {
	Index       int             `json:"index"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// CartResponse salida de un carrito.
type CartResponse struct {
	ID        string             `json:"id"`
	Lines     []CartLineResponse `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewCartResponse mapea el carrito a su salida HTTP.
func NewCartResponse(c *entity.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(c.Lines))
	for i, l := range c.Lines {
		lines = append(lines, CartLineResponse{
			Index:       i,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Total:       l.Total,
		})
	}
	return CartResponse{
		ID:        c.ID,
		Lines:     lines,
		Total:     c.Total(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
