package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de un ticket de venta. Total = suma de los totales de sus líneas.
type Sale struct {
	ID         string
	BusinessID string
	UserID     string
	Total      decimal.Decimal
	CreatedAt  time.Time
	Items      []SaleItem
}

// SaleItem línea de una venta. Nombre y precio se capturan al momento de vender
// para que el ticket histórico no cambie si el producto se renombra o se reprecia.
type SaleItem struct {
	ID          string
	SaleID      string
	Line        int // 1-based, orden del carrito
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Total       decimal.Decimal
}

// LineTotal calcula precio unitario × cantidad.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
