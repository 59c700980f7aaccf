package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct {
	store *Store
	tx    *state
}

func (r *saleRepo) Create(ctx context.Context, s *entity.Sale) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return fmt.Errorf("%w: venta %s ya existe", domain.ErrConflict, s.ID)
		}
		h := *s
		h.Items = nil
		st.sales[s.ID] = &h
		st.saleOrder = append(st.saleOrder, s.ID)
		return nil
	})
}

func (r *saleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		if _, ok := st.sales[item.SaleID]; !ok {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, item.SaleID)
		}
		if _, ok := st.products[item.ProductID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, item.ProductID)
		}
		st.items[item.SaleID] = append(st.items[item.SaleID], *item)
		return nil
	})
}

func (r *saleRepo) UpdateTotal(ctx context.Context, saleID string, total decimal.Decimal) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		s, ok := st.sales[saleID]
		if !ok {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		s.Total = total
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.store.view(r.tx, func(st *state) {
		if s, ok := st.sales[id]; ok {
			h := *s
			out = &h
		}
	})
	return out, nil
}

func (r *saleRepo) ListItems(_ context.Context, saleID string) ([]entity.SaleItem, error) {
	var out []entity.SaleItem
	r.store.view(r.tx, func(st *state) {
		out = append([]entity.SaleItem(nil), st.items[saleID]...)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out, nil
}

func (r *saleRepo) List(_ context.Context, businessID string, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	r.store.view(r.tx, func(st *state) {
		for i := len(st.saleOrder) - 1; i >= 0; i-- {
			s := st.sales[st.saleOrder[i]]
			if s.BusinessID != businessID || !inRange(s.CreatedAt, f.From, f.To) {
				continue
			}
			if f.ProductID != "" && !hasProduct(st.items[s.ID], f.ProductID) {
				continue
			}
			h := *s
			out = append(out, &h)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Offset, f.Limit), nil
}

func (r *saleRepo) CountItemsByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	r.store.view(r.tx, func(st *state) {
		for _, its := range st.items {
			for _, it := range its {
				if it.ProductID == productID {
					n++
				}
			}
		}
	})
	return n, nil
}

func (r *saleRepo) Totals(_ context.Context, businessID string, from, to time.Time) (repository.SalesTotals, error) {
	res := repository.SalesTotals{Total: decimal.Zero}
	r.store.view(r.tx, func(st *state) {
		for _, s := range st.sales {
			if s.BusinessID == businessID && inRange(s.CreatedAt, &from, &to) {
				res.Count++
				res.Total = res.Total.Add(s.Total)
			}
		}
	})
	return res, nil
}

func (r *saleRepo) TopProducts(_ context.Context, businessID string, from time.Time, limit int) ([]repository.ProductSales, error) {
	agg := make(map[string]*repository.ProductSales)
	r.store.view(r.tx, func(st *state) {
		for id, s := range st.sales {
			if s.BusinessID != businessID || s.CreatedAt.Before(from) {
				continue
			}
			for _, it := range st.items[id] {
				ps, ok := agg[it.ProductName]
				if !ok {
					ps = &repository.ProductSales{ProductName: it.ProductName, Income: decimal.Zero}
					agg[it.ProductName] = ps
				}
				ps.Quantity += it.Quantity
				ps.Income = ps.Income.Add(it.Total)
			}
		}
	})
	out := make([]repository.ProductSales, 0, len(agg))
	for _, ps := range agg {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductName < out[j].ProductName
	})
	return page(out, 0, limit), nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func hasProduct(items []entity.SaleItem, productID string) bool {
	for _, it := range items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
