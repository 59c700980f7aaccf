package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Product representa un producto del catálogo de un negocio.
// Stock solo cambia a través del kardex (inventory.LedgerUseCase); nunca se escribe directamente.
type Product struct {
	ID         string
	BusinessID string
	Name       string
	Price      decimal.Decimal // precio de venta, NUMERIC(10,2), >= 0
	Stock      int             // unidades disponibles, >= 0
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NameKey clave de unicidad del nombre dentro de un negocio (sin distinguir mayúsculas).
// Equivale al índice lower(name) de PostgreSQL: "Straße" y "STRASSE" son nombres distintos.
func NameKey(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// Clone devuelve una copia del producto.
func (p *Product) Clone() *Product {
	cp := *p
	return &cp
}
