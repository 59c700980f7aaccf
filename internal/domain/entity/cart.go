package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
)

// CartLine línea candidata de venta. Nombre, precio y total se capturan al agregarla.
type CartLine struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Total       decimal.Decimal
}

// Cart acumulador previo al checkout. No reserva stock: abandonarlo no tiene efecto en inventario.
type Cart struct {
	ID         string
	BusinessID string
	UserID     string
	Lines      []CartLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCart crea un carrito vacío para el usuario y negocio indicados.
func NewCart(id, businessID, userID string, now time.Time) *Cart {
	return &Cart{
		ID:         id,
		BusinessID: businessID,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// QuantityFor suma las cantidades ya pedidas para un producto.
func (c *Cart) QuantityFor(productID string) int {
	total := 0
	for _, l := range c.Lines {
		if l.ProductID == productID {
			total += l.Quantity
		}
	}
	return total
}

// AddLine agrega una línea al final del carrito.
// La verificación de stock es orientativa: el checkout la repite dentro de la transacción.
func (c *Cart) AddLine(p *Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor que 0", domain.ErrValidation)
	}
	if !p.IsActive {
		return fmt.Errorf("%w: %w: %s", domain.ErrValidation, domain.ErrInactiveProduct, p.Name)
	}
	if p.Stock < c.QuantityFor(p.ID)+quantity {
		return fmt.Errorf("%w: %s (disponible %d)", domain.ErrInsufficientStock, p.Name, p.Stock)
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		Total:       LineTotal(p.Price, quantity),
	})
	return nil
}

// RemoveLine elimina la línea en la posición index (0-based).
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return fmt.Errorf("%w: línea %d", domain.ErrNotFound, index)
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// Clear vacía el carrito.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total suma los totales capturados en aritmética decimal.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total)
	}
	return total
}

// Clone devuelve una copia independiente del carrito.
func (c *Cart) Clone() *Cart {
	cp := *c
	if c.Lines != nil {
		cp.Lines = make([]CartLine, len(c.Lines))
		copy(cp.Lines, c.Lines)
	}
	return &cp
}
