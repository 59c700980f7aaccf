package entity

import "time"

// Tipos de movimiento del kardex.
const (
	MovementIn     = "in"     // entrada
	MovementOut    = "out"    // salida
	MovementAdjust = "adjust" // ajuste a un stock absoluto
)

// MaxMovementNote longitud máxima de la nota de un movimiento.
const MaxMovementNote = 255

// InventoryMovement es un hecho inmutable del kardex: nunca se actualiza ni se elimina.
//
// in:     StockAfter = StockBefore + Quantity
// out:    StockAfter = StockBefore - Quantity
// adjust: Quantity = |StockAfter - StockBefore| (siempre > 0)
type InventoryMovement struct {
	ID          string
	BusinessID  string
	ProductID   string
	UserID      string
	SaleID      string // vacío si el movimiento no proviene de una venta
	Type        string
	Quantity    int
	StockBefore int
	StockAfter  int
	Note        string
	CreatedAt   time.Time
}

// IsValidMovementType indica si t es uno de los tipos soportados.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}
