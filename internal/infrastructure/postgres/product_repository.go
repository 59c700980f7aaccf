package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, business_id, name, price, stock, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Un nombre repetido en el negocio devuelve ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.BusinessID, p.Name, p.Price, p.Stock, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert product", err)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProductRow(row, "get product")
}

// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	return scanProductRow(row, "get product for update")
}

// GetByNameForUpdate busca por lower(name) dentro del negocio y bloquea la fila.
func (r *ProductRepo) GetByNameForUpdate(ctx context.Context, businessID, name string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE business_id = $1 AND lower(name) = lower($2)
		 FOR UPDATE`, businessID, name)
	return scanProductRow(row, "get product by name")
}

// Update actualiza nombre, precio y estado. Stock solo cambia con UpdateStock.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if !validID(p.ID) {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, p.ID)
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET name = $2, price = $3, is_active = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.Name, p.Price, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, p.ID)
	}
	return nil
}

// UpdateStock escribe el stock calculado por el kardex.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, stock int, updatedAt time.Time) error {
	if !validID(productID) {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`,
		productID, stock, updatedAt,
	)
	if err != nil {
		return mapError("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return nil
}

// List lista productos del negocio ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, businessID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id = $1`
	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY lower(name), id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, businessID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, mapError("list products", err)
	}
	return collectProducts(rows)
}

// ListLowStock lista productos con stock <= threshold, de menor a mayor.
func (r *ProductRepo) ListLowStock(ctx context.Context, businessID string, threshold, limit int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE business_id = $1 AND stock <= $2
		 ORDER BY stock ASC, lower(name) LIMIT $3`,
		businessID, threshold, limit,
	)
	if err != nil {
		return nil, mapError("list low stock", err)
	}
	return collectProducts(rows)
}

// Delete elimina un producto. Las FK con RESTRICT devuelven ErrConflict si hay ventas o movimientos.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return nil
}

func scanProduct(s rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := s.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func scanProductRow(row pgx.Row, op string) (*entity.Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.StorageError(op, err)
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.StorageError("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list products", err)
	}
	return list, nil
}
