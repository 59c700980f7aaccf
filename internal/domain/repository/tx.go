package repository

import "context"

// Tx agrupa los repositorios atados a una misma transacción.
type Tx struct {
	Products  ProductRepository
	Movements InventoryMovementRepository
	Sales     SaleRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en cualquier otro caso.
// Garantiza la atomicidad del kardex y del checkout.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
