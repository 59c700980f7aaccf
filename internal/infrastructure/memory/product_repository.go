package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	store *Store
	tx    *state
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return fmt.Errorf("%w: producto %s ya existe", domain.ErrConflict, p.ID)
		}
		if err := checkUniqueName(st, p); err != nil {
			return err
		}
		st.products[p.ID] = p.Clone()
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.store.view(r.tx, func(st *state) {
		if p, ok := st.products[id]; ok {
			out = p.Clone()
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetByNameForUpdate(_ context.Context, businessID, name string) (*entity.Product, error) {
	key := entity.NameKey(name)
	var out *entity.Product
	r.store.view(r.tx, func(st *state) {
		for _, p := range st.products {
			if p.BusinessID == businessID && entity.NameKey(p.Name) == key {
				out = p.Clone()
				return
			}
		}
	})
	return out, nil
}

func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrProductNotFound, p.ID)
		}
		if err := checkUniqueName(st, p); err != nil {
			return err
		}
		cur.Name = p.Name
		cur.Price = p.Price
		cur.IsActive = p.IsActive
		cur.UpdatedAt = p.UpdatedAt
		return nil
	})
}

func (r *productRepo) UpdateStock(ctx context.Context, productID string, stock int, updatedAt time.Time) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		cur, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrProductNotFound, productID)
		}
		if stock < 0 {
			return domain.StorageError("update stock", fmt.Errorf("stock negativo para %s", productID))
		}
		cur.Stock = stock
		cur.UpdatedAt = updatedAt
		return nil
	})
}

func (r *productRepo) List(_ context.Context, businessID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	r.store.view(r.tx, func(st *state) {
		for _, p := range st.products {
			if p.BusinessID != businessID || (filter.ActiveOnly && !p.IsActive) {
				continue
			}
			out = append(out, p.Clone())
		}
	})
	sort.Slice(out, func(i, j int) bool {
		ki, kj := entity.NameKey(out[i].Name), entity.NameKey(out[j].Name)
		if ki != kj {
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *productRepo) ListLowStock(_ context.Context, businessID string, threshold, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.store.view(r.tx, func(st *state) {
		for _, p := range st.products {
			if p.BusinessID == businessID && p.Stock <= threshold {
				out = append(out, p.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return entity.NameKey(out[i].Name) < entity.NameKey(out[j].Name)
	})
	return page(out, 0, limit), nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrProductNotFound, id)
		}
		for _, m := range st.movements {
			if m.ProductID == id {
				return fmt.Errorf("%w: el producto tiene movimientos", domain.ErrConflict)
			}
		}
		for _, its := range st.items {
			for _, it := range its {
				if it.ProductID == id {
					return fmt.Errorf("%w: el producto tiene ventas", domain.ErrConflict)
				}
			}
		}
		delete(st.products, id)
		return nil
	})
}

// checkUniqueName replica el índice único (business_id, lower(name)).
func checkUniqueName(st *state, p *entity.Product) error {
	key := entity.NameKey(p.Name)
	for _, other := range st.products {
		if other.ID != p.ID && other.BusinessID == p.BusinessID && entity.NameKey(other.Name) == key {
			return fmt.Errorf("%w: ya existe un producto llamado %q", domain.ErrConflict, other.Name)
		}
	}
	return nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
