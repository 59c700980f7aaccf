package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
// Con merge_if_exists, un nombre existente (sin distinguir mayúsculas) suma el stock al producto actual.
type CreateProductRequest struct {
	Name               string          `json:"name" validate:"required,min=1,max=200"`
	Price              decimal.Decimal `json:"price"`
	Stock              int             `json:"stock" validate:"min=0"`
	IsActive           *bool           `json:"is_active"`
	MergeIfExists      bool            `json:"merge_if_exists"`
	UpdatePriceOnMerge bool            `json:"update_price_on_merge"`
}

// UpdateProductRequest entrada para actualizar un producto. Un stock distinto del actual genera un ajuste.
type UpdateProductRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock" validate:"omitempty,min=0"`
}

// UpdatePriceRequest entrada para cambiar solo el precio.
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// SetActiveRequest entrada para activar o desactivar un producto.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string          `json:"id"`
	BusinessID string          `json:"business_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateProductResponse producto creado o fusionado.
type CreateProductResponse struct {
	Product ProductResponse `json:"product"`
	Merged  bool            `json:"merged"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewProductResponse mapea la entidad a su salida HTTP.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		BusinessID: p.BusinessID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// NewProductList mapea una página de productos.
func NewProductList(products []*entity.Product, limit, offset int) ProductListResponse {
	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, NewProductResponse(p))
	}
	return ProductListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset, Count: len(items)}}
}
