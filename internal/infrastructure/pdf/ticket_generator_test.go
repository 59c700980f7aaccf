package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/pdf"
)

func TestGenerateTicket_DevuelvePDF(t *testing.T) {
	price := decimal.RequireFromString("9.99")
	sale := &entity.Sale{
		ID:         "0b6c1f7e-3a42-4d7e-9a55-6f1f0c2d9e11",
		BusinessID: "b1",
		UserID:     "u1",
		Total:      decimal.RequireFromString("49.95"),
		CreatedAt:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Items: []entity.SaleItem{
			{Line: 1, ProductID: "p1", ProductName: "Café molido", UnitPrice: price, Quantity: 3, Total: entity.LineTotal(price, 3)},
			{Line: 2, ProductID: "p1", ProductName: "Café molido", UnitPrice: price, Quantity: 2, Total: entity.LineTotal(price, 2)},
		},
	}

	out, err := pdf.NewTicketGenerator().GenerateTicket(context.Background(), &entity.Business{ID: "b1", Name: "Tienda Don José"}, sale)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el ticket debe ser un PDF")
}

func TestGenerateTicket_NegocioSinNombre(t *testing.T) {
	sale := &entity.Sale{ID: "abc", Total: decimal.Zero, CreatedAt: time.Now()}

	out, err := pdf.NewTicketGenerator().GenerateTicket(context.Background(), &entity.Business{ID: "b1"}, sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"9.99":      "9,99",
		"1000":      "1.000,00",
		"1234567.5": "1.234.567,50",
		"-2500.1":   "-2.500,10",
		"999.999":   "1.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.FormatMoney(decimal.RequireFromString(in)), in)
	}
}
