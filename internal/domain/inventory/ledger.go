package inventory

import (
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Change resultado de aplicar un movimiento sobre el stock actual.
type Change struct {
	Quantity    int
	StockBefore int
	StockAfter  int
}

// Compute calcula el stock resultante de un movimiento (servicio de dominio, sin efectos).
//
//	in:     value = cantidad a sumar (> 0)
//	out:    value = cantidad a restar (> 0, <= stock actual)
//	adjust: value = nuevo stock absoluto (>= 0, distinto del actual)
func Compute(movementType string, current, value int) (Change, error) {
	ch := Change{StockBefore: current}
	switch movementType {
	case entity.MovementIn:
		if value <= 0 {
			return Change{}, fmt.Errorf("%w: la cantidad debe ser mayor que 0", domain.ErrValidation)
		}
		ch.Quantity = value
		ch.StockAfter = current + value
	case entity.MovementOut:
		if value <= 0 {
			return Change{}, fmt.Errorf("%w: la cantidad debe ser mayor que 0", domain.ErrValidation)
		}
		if current < value {
			return Change{}, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, value)
		}
		ch.Quantity = value
		ch.StockAfter = current - value
	case entity.MovementAdjust:
		if value < 0 {
			return Change{}, fmt.Errorf("%w: el stock ajustado no puede ser negativo", domain.ErrValidation)
		}
		if value == current {
			return Change{}, domain.ErrNoOp
		}
		ch.StockAfter = value
		ch.Quantity = abs(value - current)
	default:
		return Change{}, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrValidation, movementType)
	}
	return ch, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
