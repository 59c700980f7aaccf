package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/catalog"
	"github.com/jhoicas/kardex-api/internal/application/checkout"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/sales"
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

// fakeTickets registra el negocio y la venta recibidos.
type fakeTickets struct {
	business *entity.Business
	sale     *entity.Sale
}

func (f *fakeTickets) GenerateTicket(_ context.Context, b *entity.Business, s *entity.Sale) ([]byte, error) {
	f.business, f.sale = b, s
	return []byte("%PDF-fake"), nil
}

type fixture struct {
	store    *memory.Store
	catalog  *catalog.UseCase
	checkout *checkout.UseCase
	sales    *sales.UseCase
	tickets  *fakeTickets
}

func newFixture() *fixture {
	store := memory.NewStore()
	ledger := appinventory.NewLedgerUseCase(store, store.Movements(), nil, nil, zerolog.Nop())
	tickets := &fakeTickets{}
	return &fixture{
		store:    store,
		catalog:  catalog.NewUseCase(store, store.Products(), ledger),
		checkout: checkout.NewUseCase(store, ledger, nil, nil, zerolog.Nop()),
		sales:    sales.NewUseCase(store.Sales(), store.Businesses(), tickets),
		tickets:  tickets,
	}
}

func (f *fixture) product(t *testing.T, actor tenant.Actor, name string, stock int) *entity.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), actor, catalog.CreateInput{
		Name: name, Price: decimal.RequireFromString("2.50"), Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestListSales_MasRecientePrimeroYPorProducto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.product(t, actorA, "A", 10)
	b := f.product(t, actorA, "B", 10)

	s1, err := f.checkout.SellOne(ctx, actorA, a.ID, 1)
	require.NoError(t, err)
	s2, err := f.checkout.SellOne(ctx, actorA, b.ID, 1)
	require.NoError(t, err)

	list, err := f.sales.ListSales(ctx, actorA, repository.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, s2.ID, list[0].ID)
	assert.Equal(t, s1.ID, list[1].ID)

	onlyA, err := f.sales.ListSales(ctx, actorA, repository.SaleFilter{ProductID: a.ID})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, s1.ID, onlyA[0].ID)

	other, err := f.sales.ListSales(ctx, actorB, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetSale_ConLineasYAislamiento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.product(t, actorA, "A", 10)
	sale, err := f.checkout.SellOne(ctx, actorA, p.ID, 3)
	require.NoError(t, err)

	got, err := f.sales.GetSale(ctx, actorA, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("7.50").Equal(got.Total))

	_, err = f.sales.GetSale(ctx, actorB, sale.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sales.GetSale(ctx, actorA, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTicket_UsaNegocioRegistrado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.AddBusiness(&entity.Business{ID: actorA.BusinessID, Name: "Tienda A"})
	p := f.product(t, actorA, "A", 10)
	sale, err := f.checkout.SellOne(ctx, actorA, p.ID, 1)
	require.NoError(t, err)

	pdf, err := f.sales.Ticket(ctx, actorA, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "Tienda A", f.tickets.business.Name)
	assert.Len(t, f.tickets.sale.Items, 1)

	_, err = f.sales.Ticket(ctx, actorB, sale.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTicket_SinGenerador_NotFound(t *testing.T) {
	store := memory.NewStore()
	uc := sales.NewUseCase(store.Sales(), store.Businesses(), nil)
	_, err := uc.Ticket(context.Background(), actorA, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ParseDateRange
// ──────────────────────────────────────────────────────────────────────────────

func TestParseDateRange(t *testing.T) {
	from, to, err := sales.ParseDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), *to, "un to con solo fecha incluye el día completo")

	from, to, err = sales.ParseDateRange("", "2024-03-31T10:00:00Z")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Equal(t, time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC), *to)

	from, to, err = sales.ParseDateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestParseDateRange_Invalido(t *testing.T) {
	_, _, err := sales.ParseDateRange("01/03/2024", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = sales.ParseDateRange("", "ayer")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = sales.ParseDateRange("2024-04-01", "2024-03-01")
	assert.ErrorIs(t, err, domain.ErrValidation, "rango invertido")
}
