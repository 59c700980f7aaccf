package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/cart"
	"github.com/jhoicas/kardex-api/internal/application/catalog"
	"github.com/jhoicas/kardex-api/internal/application/checkout"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

var (
	actorA = tenant.NewActor("user-a", "business-a")
	actorB = tenant.NewActor("user-b", "business-b")
)

type fixture struct {
	store   *memory.Store
	catalog *catalog.UseCase
	carts   *cart.UseCase
	ledger  *appinventory.LedgerUseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	ledger := appinventory.NewLedgerUseCase(store, store.Movements(), nil, nil, zerolog.Nop())
	checkoutUC := checkout.NewUseCase(store, ledger, nil, nil, zerolog.Nop())
	return &fixture{
		store:   store,
		catalog: catalog.NewUseCase(store, store.Products(), ledger),
		carts:   cart.NewUseCase(memory.NewCartStore(time.Hour), store.Products(), checkoutUC),
		ledger:  ledger,
	}
}

func (f *fixture) product(t *testing.T, actor tenant.Actor, name, price string, stock int) *entity.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), actor, catalog.CreateInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo: carrito → checkout
// ──────────────────────────────────────────────────────────────────────────────

func TestCart_EscenarioCompleto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(t, actorA, "Café", "9.99", 20)

	c, err := f.carts.Create(ctx, actorA)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, actorA, c.ID, p.ID, 3)
	require.NoError(t, err)
	c, err = f.carts.AddLine(ctx, actorA, c.ID, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
	assert.True(t, decimal.RequireFromString("49.95").Equal(c.Total()))

	sale, err := f.carts.Checkout(ctx, actorA, c.ID)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("49.95").Equal(sale.Total))
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 5, sale.Items[0].Quantity+sale.Items[1].Quantity)

	got, err := f.catalog.GetProduct(ctx, actorA, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Stock)

	movs, err := f.ledger.ListMovements(ctx, actorA, repository.MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, movs, 3, "stock inicial + una salida por línea")
	assert.Equal(t, entity.MovementOut, movs[0].Type)
	assert.Equal(t, 17, movs[0].StockBefore)
	assert.Equal(t, 15, movs[0].StockAfter)
	assert.Equal(t, entity.MovementOut, movs[1].Type)
	assert.Equal(t, 20, movs[1].StockBefore)
	assert.Equal(t, 17, movs[1].StockAfter)

	after, err := f.carts.Get(ctx, actorA, c.ID)
	require.NoError(t, err)
	assert.True(t, after.IsEmpty(), "el carrito queda vacío")
}

func TestCart_CheckoutFallidoConservaElCarrito(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(t, actorA, "Pan", "1.00", 3)

	c, err := f.carts.Create(ctx, actorA)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, actorA, c.ID, p.ID, 3)
	require.NoError(t, err)

	_, err = f.ledger.ApplyMovement(ctx, actorA, appinventory.MovementInput{ProductID: p.ID, Type: entity.MovementOut, Quantity: 1})
	require.NoError(t, err)

	_, err = f.carts.Checkout(ctx, actorA, c.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	kept, err := f.carts.Get(ctx, actorA, c.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Lines, 1)
}

func TestCart_CheckoutVacio(t *testing.T) {
	f := newFixture()
	c, err := f.carts.Create(context.Background(), actorA)
	require.NoError(t, err)

	_, err = f.carts.Checkout(context.Background(), actorA, c.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición y aislamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestCart_AddLine_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(t, actorA, "Pan", "1.00", 3)
	c, err := f.carts.Create(ctx, actorA)
	require.NoError(t, err)

	_, err = f.carts.AddLine(ctx, actorA, c.ID, p.ID, 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.carts.AddLine(ctx, actorA, c.ID, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.carts.AddLine(ctx, actorA, "carrito-inexistente", p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.catalog.SetActive(ctx, actorA, p.ID, false)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, actorA, c.ID, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInactiveProduct)

	got, err := f.carts.Get(ctx, actorA, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "ningún intento fallido modifica el carrito")
}

func TestCart_RemoveLineClearYDiscard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.product(t, actorA, "A", "1.00", 10)
	b := f.product(t, actorA, "B", "2.00", 10)
	c, err := f.carts.Create(ctx, actorA)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, actorA, c.ID, a.ID, 1)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, actorA, c.ID, b.ID, 1)
	require.NoError(t, err)

	got, err := f.carts.RemoveLine(ctx, actorA, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, b.ID, got.Lines[0].ProductID)

	_, err = f.carts.RemoveLine(ctx, actorA, c.ID, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err = f.carts.Clear(ctx, actorA, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	require.NoError(t, f.carts.Discard(ctx, actorA, c.ID))
	_, err = f.carts.Get(ctx, actorA, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Descartar no toca el inventario.
	pa, err := f.catalog.GetProduct(ctx, actorA, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, pa.Stock)
}

func TestCart_OtroNegocio_Forbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pa := f.product(t, actorA, "A", "1.00", 10)
	pb := f.product(t, actorB, "B", "1.00", 10)
	c, err := f.carts.Create(ctx, actorA)
	require.NoError(t, err)

	_, err = f.carts.Get(ctx, actorB, c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.carts.AddLine(ctx, actorB, c.ID, pb.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.carts.AddLine(ctx, actorA, c.ID, pb.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden, "producto de otro negocio")
	_, err = f.carts.Checkout(ctx, actorB, c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.carts.Discard(ctx, actorB, c.ID), domain.ErrForbidden)

	_, err = f.carts.AddLine(ctx, actorA, c.ID, pa.ID, 1)
	assert.NoError(t, err)
}
