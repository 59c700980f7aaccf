package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*movementRepo)(nil)

type movementRepo struct {
	store *Store
	tx    *state
}

func (r *movementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	return r.store.write(ctx, r.tx, func(st *state) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *movementRepo) List(_ context.Context, businessID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	r.store.view(r.tx, func(st *state) {
		// Recorrido inverso: seq descendente.
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.BusinessID != businessID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Offset, f.Limit), nil
}

func (r *movementRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	r.store.view(r.tx, func(st *state) {
		for _, m := range st.movements {
			if m.ProductID == productID {
				n++
			}
		}
	})
	return n, nil
}
