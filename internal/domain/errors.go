package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Todos son recuperables por el llamador: abortan la operación en curso y dejan el estado intacto.
var (
	ErrValidation        = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInactiveProduct   = errors.New("producto inactivo")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrEmptyCart         = errors.New("el carrito está vacío")
	ErrNoOp              = errors.New("el ajuste no cambia el stock")
	ErrForbidden         = errors.New("acceso denegado")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrStorage           = errors.New("error de almacenamiento")
)

// StorageError envuelve un fallo de la capa de persistencia.
// El error resultante cumple errors.Is(err, ErrStorage) y conserva la causa original.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
