package checkout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/catalog"
	"github.com/jhoicas/kardex-api/internal/application/checkout"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/ports"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/domain/tenant"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	actorA = tenant.NewActor("user-a", "business-a")
	actorB = tenant.NewActor("user-b", "business-b")
)

type spyPublisher struct {
	mu        sync.Mutex
	sales     []ports.SaleCompletedEvent
	movements []ports.MovementRecordedEvent
}

func (s *spyPublisher) PublishSaleCompleted(_ context.Context, ev ports.SaleCompletedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, ev)
	return nil
}

func (s *spyPublisher) PublishMovementRecorded(_ context.Context, evs ...ports.MovementRecordedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, evs...)
	return nil
}

type spyMetrics struct {
	mu        sync.Mutex
	outcomes  []string
	movements map[string]int
}

func (s *spyMetrics) ObserveCheckout(outcome string, _ int, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

func (s *spyMetrics) IncMovement(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.movements == nil {
		s.movements = map[string]int{}
	}
	s.movements[t]++
}

type fixture struct {
	store    *memory.Store
	catalog  *catalog.UseCase
	checkout *checkout.UseCase
	pub      *spyPublisher
	metrics  *spyMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &spyPublisher{}
	met := &spyMetrics{}
	ledger := appinventory.NewLedgerUseCase(store, store.Movements(), pub, met, zerolog.Nop())
	return &fixture{
		store:    store,
		catalog:  catalog.NewUseCase(store, store.Products(), ledger),
		checkout: checkout.NewUseCase(store, ledger, pub, met, zerolog.Nop()),
		pub:      pub,
		metrics:  met,
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

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) salesCount(t *testing.T, actor tenant.Actor) int {
	t.Helper()
	list, err := f.store.Sales().List(context.Background(), actor.BusinessID, repository.SaleFilter{Limit: 500})
	require.NoError(t, err)
	return len(list)
}

func (f *fixture) movementsOf(t *testing.T, actor tenant.Actor, productID string) []*entity.InventoryMovement {
	t.Helper()
	list, err := f.store.Movements().List(context.Background(), actor.BusinessID, repository.MovementFilter{ProductID: productID, Limit: 500})
	require.NoError(t, err)
	return list
}

func cartWith(t *testing.T, actor tenant.Actor, lines ...struct {
	p   *entity.Product
	qty int
}) *entity.Cart {
	t.Helper()
	c := entity.NewCart("cart-1", actor.BusinessID, actor.UserID, time.Now())
	for _, l := range lines {
		require.NoError(t, c.AddLine(l.p, l.qty))
	}
	return c
}

func line(p *entity.Product, qty int) struct {
	p   *entity.Product
	qty int
} {
	return struct {
		p   *entity.Product
		qty int
	}{p, qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_ConfirmaVentaYDescuentaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cafe := f.product(t, actorA, "Café", "9.99", 20)
	pan := f.product(t, actorA, "Pan", "1.50", 10)

	c := cartWith(t, actorA, line(cafe, 3), line(pan, 4), line(cafe, 2))
	sale, err := f.checkout.Checkout(ctx, actorA, c)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("55.95").Equal(sale.Total), "3×9.99 + 4×1.50 + 2×9.99")
	require.Len(t, sale.Items, 3, "las líneas repetidas no se fusionan")
	for i, it := range sale.Items {
		assert.Equal(t, i+1, it.Line, "las líneas conservan el orden del carrito")
	}
	assert.Equal(t, cafe.ID, sale.Items[0].ProductID)
	assert.Equal(t, pan.ID, sale.Items[1].ProductID)
	assert.True(t, c.IsEmpty(), "el carrito queda vacío tras el checkout")

	assert.Equal(t, 15, f.stock(t, cafe.ID))
	assert.Equal(t, 6, f.stock(t, pan.ID))

	// Un movimiento "out" por línea, encadenado y ligado a la venta.
	movs := f.movementsOf(t, actorA, cafe.ID)
	require.Len(t, movs, 3, "stock inicial + dos líneas")
	assert.Equal(t, entity.MovementOut, movs[0].Type)
	assert.Equal(t, sale.ID, movs[0].SaleID)
	assert.Equal(t, checkout.SaleNote(sale.ID), movs[0].Note)
	assert.Equal(t, movs[1].StockAfter, movs[0].StockBefore)
	assert.Equal(t, movs[2].StockAfter, movs[1].StockBefore)

	stored, err := f.store.Sales().ListItems(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

// Si una línea falla no se persiste nada: ni venta, ni stock, ni movimientos, ni eventos.
func TestCheckout_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, actorA, "A", "2.00", 10)
	b := f.product(t, actorA, "B", "3.00", 3)
	c := cartWith(t, actorA, line(a, 5), line(b, 3))

	// Otro canal vende B antes del checkout.
	_, err := f.checkout.SellOne(ctx, actorA, b.ID, 1)
	require.NoError(t, err)
	salesBefore := f.salesCount(t, actorA)
	eventsBefore := len(f.pub.sales)

	_, err = f.checkout.Checkout(ctx, actorA, c)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, f.stock(t, a.ID), "la línea válida tampoco se aplica")
	assert.Equal(t, 2, f.stock(t, b.ID))
	assert.Len(t, f.movementsOf(t, actorA, a.ID), 1, "solo el stock inicial")
	assert.Equal(t, salesBefore, f.salesCount(t, actorA))
	assert.Len(t, f.pub.sales, eventsBefore, "no se publica una venta abortada")
	assert.Len(t, c.Lines, 2, "el carrito queda intacto")
	assert.Contains(t, f.metrics.outcomes, ports.OutcomeInsufficient)
}

func TestCheckout_CantidadAcumuladaPorProducto(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, actorA, "Leche", "1.00", 5)
	c := cartWith(t, actorA, line(p, 3), line(p, 2))

	// Venta paralela de 1 unidad: 3+2 ya no cabe en 4.
	_, err := f.checkout.SellOne(context.Background(), actorA, p.ID, 1)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(context.Background(), actorA, c)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, f.stock(t, p.ID))
}

func TestCheckout_CarritoVacio(t *testing.T) {
	f := newFixture(t)
	c := entity.NewCart("c", actorA.BusinessID, actorA.UserID, time.Now())

	_, err := f.checkout.Checkout(context.Background(), actorA, c)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	_, err = f.checkout.Checkout(context.Background(), actorA, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, 0, f.salesCount(t, actorA))
}

func TestCheckout_ProductoDesactivadoDespuesDeAgregar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, actorA, "Yogur", "2.50", 5)
	c := cartWith(t, actorA, line(p, 1))

	_, err := f.catalog.SetActive(ctx, actorA, p.ID, false)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, actorA, c)
	assert.ErrorIs(t, err, domain.ErrInactiveProduct)
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestCheckout_ProductoEliminadoDespuesDeAgregar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.catalog.CreateProduct(ctx, actorA, catalog.CreateInput{Name: "Efímero", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	p.Stock = 3 // el carrito solo valida contra la copia
	c := cartWith(t, actorA, line(p, 1))

	require.NoError(t, f.catalog.DeleteProduct(ctx, actorA, p.ID))

	_, err = f.checkout.Checkout(ctx, actorA, c)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCheckout_CarritoDeOtroNegocio_Forbidden(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, actorA, "Arroz", "4.00", 5)
	c := cartWith(t, actorA, line(p, 1))

	_, err := f.checkout.Checkout(context.Background(), actorB, c)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestSellOne_ProductoDeOtroNegocio_Forbidden(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, actorA, "Arroz", "4.00", 5)

	_, err := f.checkout.SellOne(context.Background(), actorB, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, f.salesCount(t, actorB))
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestSellOne_CapturaNombreYPrecioActuales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, actorA, "Té", "2.00", 5)

	_, err := f.catalog.UpdatePrice(ctx, actorA, p.ID, decimal.RequireFromString("2.25"))
	require.NoError(t, err)

	sale, err := f.checkout.SellOne(ctx, actorA, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Té", sale.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("4.50").Equal(sale.Total))
}

func TestSellOne_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, actorA, "Sal", "1.00", 5)

	_, err := f.checkout.SellOne(context.Background(), actorA, p.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, f.metrics.outcomes, ports.OutcomeRejected)
}

// Dos ventas concurrentes de 6 sobre stock 10: exactamente una confirma.
func TestSellOne_ConcurrenciaSobreMismoProducto(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, actorA, "Aceite", "5.00", 10)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.checkout.SellOne(context.Background(), actorA, p.ID, 6)
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 4, f.stock(t, p.ID))
	assert.Equal(t, 1, f.salesCount(t, actorA))
}

func TestCheckout_PublicaEventosTrasConfirmar(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, actorA, "Miel", "7.00", 4)

	sale, err := f.checkout.SellOne(context.Background(), actorA, p.ID, 1)
	require.NoError(t, err)

	require.Len(t, f.pub.sales, 1)
	ev := f.pub.sales[0]
	assert.Equal(t, sale.ID, ev.SaleID)
	assert.Equal(t, actorA.BusinessID, ev.BusinessID)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, 1, ev.Items[0].Line)

	// stock inicial + venta
	require.Len(t, f.pub.movements, 2)
	assert.Equal(t, sale.ID, f.pub.movements[1].SaleID)
	assert.Equal(t, 1, f.metrics.movements[entity.MovementOut])
	assert.Equal(t, []string{ports.OutcomeSuccess}, f.metrics.outcomes)
}
