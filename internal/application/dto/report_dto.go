package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/report"
)

// SalesTotalsResponse cantidad e importe de ventas en un rango.
type SalesTotalsResponse struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// TopProductResponse producto más vendido del periodo.
type TopProductResponse struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Income      decimal.Decimal `json:"income"`
}

// SummaryResponse resumen de ventas e inventario.
type SummaryResponse struct {
	Days         int                  `json:"days"`
	Today        SalesTotalsResponse  `json:"today"`
	Period       SalesTotalsResponse  `json:"period"`
	TopProducts  []TopProductResponse `json:"top_products"`
	LowThreshold int                  `json:"low_threshold"`
	LowStock     []ProductResponse    `json:"low_stock"`
}

// NewSummaryResponse mapea el resumen del caso de uso.
func NewSummaryResponse(s *report.Summary) SummaryResponse {
	out := SummaryResponse{
		Days:         s.Days,
		Today:        SalesTotalsResponse{Count: s.Today.Count, Total: s.Today.Total},
		Period:       SalesTotalsResponse{Count: s.Period.Count, Total: s.Period.Total},
		TopProducts:  make([]TopProductResponse, 0, len(s.TopProducts)),
		LowThreshold: s.LowThreshold,
		LowStock:     make([]ProductResponse, 0, len(s.LowStock)),
	}
	for _, p := range s.TopProducts {
		out.TopProducts = append(out.TopProducts, TopProductResponse{ProductName: p.ProductName, Quantity: p.Quantity, Income: p.Income})
	}
	for _, p := range s.LowStock {
		out.LowStock = append(out.LowStock, NewProductResponse(p))
	}
	return out
}
