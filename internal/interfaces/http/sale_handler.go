package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/checkout"
	"github.com/jhoicas/kardex-api/internal/application/dto"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/sales"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// SaleHandler ventas directas, historial y tickets (protegido).
type SaleHandler struct {
	checkout *checkout.UseCase
	sales    *sales.UseCase
	log      zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(checkoutUC *checkout.UseCase, salesUC *sales.UseCase, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{checkout: checkoutUC, sales: salesUC, log: log}
}

// SellOne godoc
// @Summary      Vender un producto
// @Description  Venta de una sola línea sin carrito.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SellOneRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) SellOne(c *fiber.Ctx) error {
	var in dto.SellOneRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ProductID == "" {
		return badRequest(c, "VALIDATION", "product_id es requerido")
	}
	sale, err := h.checkout.SellOne(c.UserContext(), actorFrom(c), in.ProductID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(sale))
}

// List godoc
// @Summary      Historial de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from        query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to          query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        product_id  query  string  false  "Ventas que incluyen el producto"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := sales.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	limit := appinventory.NormalizeLimit(c.QueryInt("limit", sales.DefaultListLimit), sales.DefaultListLimit, sales.MaxListLimit)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	list, err := h.sales.ListSales(c.UserContext(), actorFrom(c), repository.SaleFilter{
		ProductID: c.Query("product_id"),
		From:      from,
		To:        to,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewSaleList(list, limit, offset))
}

// GetByID godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.sales.GetSale(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewSaleResponse(sale))
}

// Ticket godoc
// @Summary      Ticket PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ticket [get]
func (h *SaleHandler) Ticket(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.sales.Ticket(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="ticket-`+id+`.pdf"`)
	return c.Send(pdf)
}
