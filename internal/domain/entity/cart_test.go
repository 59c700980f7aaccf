package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

func newProduct(id, name, price string, stock int) *entity.Product {
	return &entity.Product{
		ID:         id,
		BusinessID: "b1",
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   true,
	}
}

func TestCart_AddLine_CapturaNombreYPrecio(t *testing.T) {
	c := entity.NewCart("c1", "b1", "u1", time.Now())
	p := newProduct("p1", "Café", "9.99", 10)

	require.NoError(t, c.AddLine(p, 2))
	p.Name = "Café molido"
	p.Price = decimal.RequireFromString("12.00")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "Café", c.Lines[0].ProductName, "el nombre capturado no cambia")
	assert.True(t, decimal.RequireFromString("19.98").Equal(c.Lines[0].Total))
	assert.True(t, decimal.RequireFromString("19.98").Equal(c.Total()))
}

func TestCart_AddLine_MismoProductoNoSeFusiona(t *testing.T) {
	c := entity.NewCart("c1", "b1", "u1", time.Now())
	p := newProduct("p1", "Pan", "1.50", 10)

	require.NoError(t, c.AddLine(p, 2))
	require.NoError(t, c.AddLine(p, 3))

	assert.Len(t, c.Lines, 2)
	assert.Equal(t, 5, c.QuantityFor("p1"))
}

func TestCart_AddLine_AcumuladoSuperaStock(t *testing.T) {
	c := entity.NewCart("c1", "b1", "u1", time.Now())
	p := newProduct("p1", "Pan", "1.50", 4)

	require.NoError(t, c.AddLine(p, 3))
	err := c.AddLine(p, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, c.Lines, 1, "la línea rechazada no se agrega")
}

func TestCart_AddLine_Rechazos(t *testing.T) {
	c := entity.NewCart("c1", "b1", "u1", time.Now())
	p := newProduct("p1", "Pan", "1.50", 4)

	assert.ErrorIs(t, c.AddLine(p, 0), domain.ErrValidation)

	p.IsActive = false
	err := c.AddLine(p, 1)
	assert.ErrorIs(t, err, domain.ErrInactiveProduct)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, c.IsEmpty())
}

func TestCart_RemoveLineYClear(t *testing.T) {
	c := entity.NewCart("c1", "b1", "u1", time.Now())
	require.NoError(t, c.AddLine(newProduct("p1", "A", "1", 5), 1))
	require.NoError(t, c.AddLine(newProduct("p2", "B", "2", 5), 1))
	require.NoError(t, c.AddLine(newProduct("p3", "C", "3", 5), 1))

	require.NoError(t, c.RemoveLine(1))
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "p1", c.Lines[0].ProductID)
	assert.Equal(t, "p3", c.Lines[1].ProductID)

	assert.ErrorIs(t, c.RemoveLine(2), domain.ErrNotFound)
	assert.ErrorIs(t, c.RemoveLine(-1), domain.ErrNotFound)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestCart_CloneEsIndependiente(t *testing.T) {
	c := entity.NewCart("c1", "b1", "u1", time.Now())
	require.NoError(t, c.AddLine(newProduct("p1", "A", "1", 5), 1))

	cp := c.Clone()
	cp.Lines[0].Quantity = 99
	cp.Clear()

	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Len(t, c.Lines, 1)
}

func TestNameKey_IgnoraMayusculasYEspacios(t *testing.T) {
	assert.Equal(t, entity.NameKey("Café"), entity.NameKey("  CAFÉ "))
	assert.NotEqual(t, entity.NameKey("Cafe"), entity.NameKey("Té"))
}

// La clave sigue a lower(name) del índice único en PostgreSQL, sin plegado de mayúsculas extendido.
func TestNameKey_MismaSemanticaQueLower(t *testing.T) {
	assert.Equal(t, "straße", entity.NameKey("STRAßE"))
	assert.NotEqual(t, entity.NameKey("Straße"), entity.NameKey("STRASSE"))
	assert.Equal(t, "ñandú", entity.NameKey("ÑANDÚ"))
}
