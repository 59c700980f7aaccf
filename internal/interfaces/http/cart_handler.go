package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/cart"
	"github.com/jhoicas/kardex-api/internal/application/dto"
)

// CartHandler maneja los carritos de venta (protegido).
type CartHandler struct {
	uc  *cart.UseCase
	log zerolog.Logger
}

// NewCartHandler construye el handler.
func NewCartHandler(uc *cart.UseCase, log zerolog.Logger) *CartHandler {
	return &CartHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear carrito
// @Tags         carts
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.CartResponse
// @Router       /api/carts [post]
func (h *CartHandler) Create(c *fiber.Ctx) error {
	out, err := h.uc.Create(c.UserContext(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCartResponse(out))
}

// Get godoc
// @Summary      Obtener carrito
// @Tags         carts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del carrito"
// @Success      200  {object}  dto.CartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/carts/{id} [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewCartResponse(out))
}

// AddLine godoc
// @Summary      Agregar línea al carrito
// @Description  Captura nombre y precio actuales. El stock se vuelve a verificar en el checkout.
// @Tags         carts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del carrito"
// @Param        body  body  dto.AddCartLineRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/carts/{id}/lines [post]
func (h *CartHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddCartLineRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ProductID == "" {
		return badRequest(c, "VALIDATION", "product_id es requerido")
	}
	out, err := h.uc.AddLine(c.UserContext(), actorFrom(c), c.Params("id"), in.ProductID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewCartResponse(out))
}

// RemoveLine godoc
// @Summary      Quitar línea del carrito
// @Tags         carts
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID del carrito"
// @Param        index  path  int     true  "Posición de la línea (desde 0)"
// @Success      200    {object}  dto.CartResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/carts/{id}/lines/{index} [delete]
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "VALIDATION", "index debe ser un entero")
	}
	out, err := h.uc.RemoveLine(c.UserContext(), actorFrom(c), c.Params("id"), index)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewCartResponse(out))
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         carts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del carrito"
// @Success      200  {object}  dto.CartResponse
// @Router       /api/carts/{id}/lines [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	out, err := h.uc.Clear(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewCartResponse(out))
}

// Discard godoc
// @Summary      Descartar carrito
// @Description  Abandonar un carrito no afecta el inventario.
// @Tags         carts
// @Security     Bearer
// @Param        id   path  string  true  "ID del carrito"
// @Success      204
// @Router       /api/carts/{id} [delete]
func (h *CartHandler) Discard(c *fiber.Ctx) error {
	if err := h.uc.Discard(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar venta
// @Description  Todo o nada: si alguna línea falla no se registra la venta ni cambia el stock y el carrito se conserva.
// @Tags         carts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del carrito"
// @Success      201  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/carts/{id}/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	sale, err := h.uc.Checkout(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(sale))
}
