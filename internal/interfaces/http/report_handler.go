package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/report"
)

// ReportHandler reportes de ventas e inventario (protegido).
type ReportHandler struct {
	uc  *report.UseCase
	log zerolog.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Summary godoc
// @Summary      Resumen de ventas
// @Description  Ventas de hoy y del periodo (1, 7 o 30 días), top 10 productos y productos con stock bajo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "1 | 7 | 30"      default(7)
// @Param        low   query  int  false  "Umbral de stock"  default(5)
// @Success      200   {object}  dto.SummaryResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), actorFrom(c), c.QueryInt("days", report.DefaultDays), c.QueryInt("low", report.DefaultLowThreshold))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewSummaryResponse(out))
}
