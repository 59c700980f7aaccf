package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
)

// Notas de los movimientos generados por el catálogo.
const (
	NoteInitialStock = "initial stock"
	NoteMerge        = "merge"
	NoteManualEdit   = "manual edit"
)

// Paginación de productos.
const (
	DefaultListLimit      = 50
	MaxListLimit          = 500
	DefaultLowStockLimit  = 20
	DefaultLowStockThresh = 5
)

// maxNameLength coincide con products.name VARCHAR(200).
const maxNameLength = 200

// maxPrice límite exclusivo de products.price NUMERIC(10,2).
var maxPrice = decimal.New(1, 8)

// UseCase administra el catálogo. Todo cambio de stock pasa por el kardex.
type UseCase struct {
	txRunner repository.TxRunner
	products repository.ProductRepository
	ledger   *appinventory.LedgerUseCase
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner repository.TxRunner, products repository.ProductRepository, ledger *appinventory.LedgerUseCase) *UseCase {
	return &UseCase{txRunner: txRunner, products: products, ledger: ledger, now: time.Now}
}

// CreateInput entrada para crear o fusionar un producto.
type CreateInput struct {
	Name               string
	Price              decimal.Decimal
	Stock              int
	Active             *bool // nil = activo
	MergeIfExists      bool
	UpdatePriceOnMerge bool
}

// UpdateInput campos opcionales de UpdateProduct. Stock es el valor final deseado.
type UpdateInput struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

// CreateProduct crea el producto con stock 0 y, si Stock > 0, registra la entrada
// "initial stock" en el kardex dentro de la misma transacción.
func (uc *UseCase) CreateProduct(ctx context.Context, actor tenant.Actor, in CreateInput) (*entity.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}
	var (
		created *entity.Product
		movs    []*entity.InventoryMovement
	)
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		p, mov, err := uc.createInTx(ctx, tx, actor, in)
		if err != nil {
			return err
		}
		created = p
		if mov != nil {
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.AfterCommit(ctx, movs...)
	return created, nil
}

// CreateOrMergeProduct busca el nombre sin distinguir mayúsculas dentro del negocio.
// Si existe y MergeIfExists, suma Stock vía kardex, opcionalmente reemplaza el precio y aplica Active.
// Si existe sin MergeIfExists devuelve ErrConflict. Si no existe lo crea.
// merged indica si se devolvió un producto existente.
func (uc *UseCase) CreateOrMergeProduct(ctx context.Context, actor tenant.Actor, in CreateInput) (product *entity.Product, merged bool, err error) {
	if err := actor.Validate(); err != nil {
		return nil, false, err
	}
	if err := validateCreate(&in); err != nil {
		return nil, false, err
	}
	var movs []*entity.InventoryMovement
	err = uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Products.GetByNameForUpdate(ctx, actor.BusinessID, in.Name)
		if err != nil {
			return err
		}
		if existing == nil {
			p, mov, err := uc.createInTx(ctx, tx, actor, in)
			if err != nil {
				return err
			}
			product, merged = p, false
			if mov != nil {
				movs = append(movs, mov)
			}
			return nil
		}
		if err := tenant.Authorize(actor, existing.BusinessID); err != nil {
			return err
		}
		if !in.MergeIfExists {
			return fmt.Errorf("%w: ya existe un producto llamado %q", domain.ErrConflict, existing.Name)
		}
		if in.Stock > 0 {
			mov, err := uc.ledger.ApplyInTx(ctx, tx, actor, existing, entity.MovementIn, in.Stock, NoteMerge, "")
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		changed := false
		if in.UpdatePriceOnMerge && !existing.Price.Equal(in.Price) {
			existing.Price = in.Price
			changed = true
		}
		if in.Active != nil && existing.IsActive != *in.Active {
			existing.IsActive = *in.Active
			changed = true
		}
		if changed {
			existing.UpdatedAt = uc.now()
			if err := tx.Products.Update(ctx, existing); err != nil {
				return err
			}
		}
		product, merged = existing, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	uc.ledger.AfterCommit(ctx, movs...)
	return product, merged, nil
}

// UpdateProduct reemplaza nombre y precio. Un Stock distinto del actual se registra como
// ajuste "manual edit" en el kardex; un Stock igual no genera movimiento.
func (uc *UseCase) UpdateProduct(ctx context.Context, actor tenant.Actor, id string, in UpdateInput) (*entity.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		in.Name = &name
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, fmt.Errorf("%w: el stock no puede ser negativo", domain.ErrValidation)
	}
	var (
		updated *entity.Product
		movs    []*entity.InventoryMovement
	)
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		p, err := uc.lockOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if in.Name != nil || in.Price != nil {
			if in.Name != nil {
				p.Name = *in.Name
			}
			if in.Price != nil {
				p.Price = *in.Price
			}
			p.UpdatedAt = uc.now()
			if err := tx.Products.Update(ctx, p); err != nil {
				return err
			}
		}
		if in.Stock != nil && *in.Stock != p.Stock {
			mov, err := uc.ledger.ApplyInTx(ctx, tx, actor, p, entity.MovementAdjust, *in.Stock, NoteManualEdit, "")
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.AfterCommit(ctx, movs...)
	return updated, nil
}

// UpdatePrice reemplaza el precio de venta.
func (uc *UseCase) UpdatePrice(ctx context.Context, actor tenant.Actor, id string, price decimal.Decimal) (*entity.Product, error) {
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	return uc.UpdateProduct(ctx, actor, id, UpdateInput{Price: &price})
}

// SetActive activa o desactiva el producto. Un producto inactivo no se puede vender.
func (uc *UseCase) SetActive(ctx context.Context, actor tenant.Actor, id string, active bool) (*entity.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		p, err := uc.lockOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if p.IsActive != active {
			p.IsActive = active
			p.UpdatedAt = uc.now()
			if err := tx.Products.Update(ctx, p); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct elimina el producto si ninguna venta ni movimiento lo referencia.
func (uc *UseCase) DeleteProduct(ctx context.Context, actor tenant.Actor, id string) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		p, err := uc.lockOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		items, err := tx.Sales.CountItemsByProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		if items > 0 {
			return fmt.Errorf("%w: el producto tiene %d ventas registradas", domain.ErrConflict, items)
		}
		movs, err := tx.Movements.CountByProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		if movs > 0 {
			return fmt.Errorf("%w: el producto tiene %d movimientos en el kardex", domain.ErrConflict, movs)
		}
		return tx.Products.Delete(ctx, p.ID)
	})
}

// GetProduct devuelve un producto del negocio del actor.
func (uc *UseCase) GetProduct(ctx context.Context, actor tenant.Actor, id string) (*entity.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err := tenant.Authorize(actor, p.BusinessID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts lista los productos del negocio ordenados por nombre.
func (uc *UseCase) ListProducts(ctx context.Context, actor tenant.Actor, filter repository.ProductFilter) ([]*entity.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	filter.Limit = appinventory.NormalizeLimit(filter.Limit, DefaultListLimit, MaxListLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.products.List(ctx, actor.BusinessID, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Product{}
	}
	return list, nil
}

// LowStock lista productos (activos o no) con stock <= threshold, de menor a mayor stock.
func (uc *UseCase) LowStock(ctx context.Context, actor tenant.Actor, threshold, limit int) ([]*entity.Product, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: umbral negativo", domain.ErrValidation)
	}
	limit = appinventory.NormalizeLimit(limit, DefaultLowStockLimit, MaxListLimit)
	list, err := uc.products.ListLowStock(ctx, actor.BusinessID, threshold, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Product{}
	}
	return list, nil
}

func (uc *UseCase) createInTx(ctx context.Context, tx repository.Tx, actor tenant.Actor, in CreateInput) (*entity.Product, *entity.InventoryMovement, error) {
	now := uc.now()
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	p := &entity.Product{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		Name:       in.Name,
		Price:      in.Price,
		Stock:      0,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Products.Create(ctx, p); err != nil {
		return nil, nil, err
	}
	if in.Stock == 0 {
		return p, nil, nil
	}
	mov, err := uc.ledger.ApplyInTx(ctx, tx, actor, p, entity.MovementIn, in.Stock, NoteInitialStock, "")
	if err != nil {
		return nil, nil, err
	}
	return p, mov, nil
}

func (uc *UseCase) lockOwned(ctx context.Context, tx repository.Tx, actor tenant.Actor, id string) (*entity.Product, error) {
	p, err := tx.Products.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err := tenant.Authorize(actor, p.BusinessID); err != nil {
		return nil, err
	}
	return p, nil
}

func validateCreate(in *CreateInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validatePrice(in.Price); err != nil {
		return err
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: el stock inicial no puede ser negativo", domain.ErrValidation)
	}
	return nil
}

// validatePrice exige un precio representable sin redondeo: >= 0, a lo sumo dos decimales y menor que 10^8.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrValidation)
	}
	if !price.Round(2).Equal(price) {
		return fmt.Errorf("%w: el precio admite a lo sumo dos decimales", domain.ErrValidation)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: el precio debe ser menor que %s", domain.ErrValidation, maxPrice.String())
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrValidation)
	}
	if len([]rune(name)) > maxNameLength {
		return fmt.Errorf("%w: el nombre supera %d caracteres", domain.ErrValidation, maxNameLength)
	}
	return nil
}
