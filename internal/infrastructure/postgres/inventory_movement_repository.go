package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, business_id, product_id, user_id, sale_id, type, quantity, stock_before, stock_after, note, created_at`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento; seq lo asigna la identidad de la tabla.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BusinessID, m.ProductID, m.UserID, nullIfEmpty(m.SaleID), m.Type,
		m.Quantity, m.StockBefore, m.StockAfter, m.Note, m.CreatedAt,
	)
	return mapError("insert inventory movement", err)
}

// List movimientos del negocio, del más reciente al más antiguo (created_at, seq).
func (r *InventoryMovementRepo) List(ctx context.Context, businessID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if f.ProductID != "" && !validID(f.ProductID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE business_id = $1`
	args := []any{businessID}
	pos := 2
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	return collectMovements(rows)
}

// CountByProduct cantidad de movimientos que referencian el producto.
func (r *InventoryMovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_movements WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, domain.StorageError("count movements", err)
	}
	return n, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.InventoryMovement, error) {
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var saleID *string
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.ProductID, &m.UserID, &saleID, &m.Type,
			&m.Quantity, &m.StockBefore, &m.StockAfter, &m.Note, &m.CreatedAt); err != nil {
			return nil, domain.StorageError("scan movement", err)
		}
		if saleID != nil {
			m.SaleID = *saleID
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list movements", err)
	}
	return list, nil
}
