package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas de venta sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sales (id, business_id, user_id, total, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.BusinessID, s.UserID, s.Total, s.CreatedAt,
	)
	return mapError("insert sale", err)
}

// CreateItem persiste una línea de la venta.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sale_items (id, sale_id, line, product_id, product_name, unit_price, quantity, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		it.ID, it.SaleID, it.Line, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.Total,
	)
	return mapError("insert sale item", err)
}

// UpdateTotal fija el total de la venta.
func (r *SaleRepo) UpdateTotal(ctx context.Context, saleID string, total decimal.Decimal) error {
	if !validID(saleID) {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET total = $2 WHERE id = $1`, saleID, total)
	if err != nil {
		return mapError("update sale total", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	return nil
}

// GetByID obtiene la cabecera de la venta.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if !validID(id) {
		return nil, nil
	}
	var s entity.Sale
	err := r.q.QueryRow(ctx,
		`SELECT id, business_id, user_id, total, created_at FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.BusinessID, &s.UserID, &s.Total, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.StorageError("get sale", err)
	}
	return &s, nil
}

// ListItems líneas de la venta en orden de carrito.
func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	if !validID(saleID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, sale_id, line, product_id, product_name, unit_price, quantity, total
		 FROM sale_items WHERE sale_id = $1 ORDER BY line`, saleID)
	if err != nil {
		return nil, mapError("list sale items", err)
	}
	defer rows.Close()
	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Line, &it.ProductID, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &it.Total); err != nil {
			return nil, domain.StorageError("scan sale item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list sale items", err)
	}
	return items, nil
}

// List cabeceras del negocio, de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, businessID string, f repository.SaleFilter) ([]*entity.Sale, error) {
	if f.ProductID != "" && !validID(f.ProductID) {
		return nil, nil
	}
	query := `SELECT s.id, s.business_id, s.user_id, s.total, s.created_at FROM sales s WHERE s.business_id = $1`
	args := []any{businessID}
	pos := 2
	if f.From != nil {
		query += fmt.Sprintf(" AND s.created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND s.created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = s.id AND si.product_id = $%d)", pos)
		args = append(args, f.ProductID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY s.created_at DESC, s.id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list sales", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.UserID, &s.Total, &s.CreatedAt); err != nil {
			return nil, domain.StorageError("scan sale", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list sales", err)
	}
	return list, nil
}

// CountItemsByProduct cantidad de líneas de venta que referencian el producto.
func (r *SaleRepo) CountItemsByProduct(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM sale_items WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, domain.StorageError("count sale items", err)
	}
	return n, nil
}

// Totals cantidad y suma de ventas en [from, to].
func (r *SaleRepo) Totals(ctx context.Context, businessID string, from, to time.Time) (repository.SalesTotals, error) {
	var t repository.SalesTotals
	err := r.q.QueryRow(ctx,
		`SELECT count(*), COALESCE(SUM(total), 0) FROM sales
		 WHERE business_id = $1 AND created_at >= $2 AND created_at <= $3`,
		businessID, from, to,
	).Scan(&t.Count, &t.Total)
	if err != nil {
		return repository.SalesTotals{}, domain.StorageError("sales totals", err)
	}
	return t, nil
}

// TopProducts productos más vendidos por unidades desde from, agrupados por nombre capturado.
func (r *SaleRepo) TopProducts(ctx context.Context, businessID string, from time.Time, limit int) ([]repository.ProductSales, error) {
	rows, err := r.q.Query(ctx,
		`SELECT si.product_name, SUM(si.quantity), COALESCE(SUM(si.total), 0)
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 WHERE s.business_id = $1 AND s.created_at >= $2
		 GROUP BY si.product_name
		 ORDER BY SUM(si.quantity) DESC, si.product_name
		 LIMIT $3`,
		businessID, from, limit,
	)
	if err != nil {
		return nil, mapError("top products", err)
	}
	defer rows.Close()
	var list []repository.ProductSales
	for rows.Next() {
		var ps repository.ProductSales
		if err := rows.Scan(&ps.ProductName, &ps.Quantity, &ps.Income); err != nil {
			return nil, domain.StorageError("scan top product", err)
		}
		list = append(list, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("top products", err)
	}
	return list, nil
}
