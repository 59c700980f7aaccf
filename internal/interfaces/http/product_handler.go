package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/catalog"
	"github.com/jhoicas/kardex-api/internal/application/dto"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc  *catalog.UseCase
	log zerolog.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.UseCase, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear producto
// @Description  Con merge_if_exists=true, si el nombre ya existe (sin distinguir mayúsculas) suma el stock al existente.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.CreateProductResponse
// @Success      200   {object}  dto.CreateProductResponse  "fusionado"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input := catalog.CreateInput{
		Name:               in.Name,
		Price:              in.Price,
		Stock:              in.Stock,
		Active:             in.IsActive,
		MergeIfExists:      in.MergeIfExists,
		UpdatePriceOnMerge: in.UpdatePriceOnMerge,
	}
	p, merged, err := h.uc.CreateOrMergeProduct(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	status := fiber.StatusCreated
	if merged {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.CreateProductResponse{Product: dto.NewProductResponse(p), Merged: merged})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activos"
// @Param        limit   query  int   false  "Límite"   default(50)
// @Param        offset  query  int   false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := appinventory.NormalizeLimit(c.QueryInt("limit", catalog.DefaultListLimit), catalog.DefaultListLimit, catalog.MaxListLimit)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	filter := repository.ProductFilter{
		ActiveOnly: c.QueryBool("active", false),
		Limit:      limit,
		Offset:     offset,
	}
	out, err := h.uc.ListProducts(c.UserContext(), actorFrom(c), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductList(out, limit, offset))
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Description  Productos con stock menor o igual al umbral, ordenados por stock ascendente.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral"  default(5)
// @Param        limit      query  int  false  "Límite"  default(20)
// @Success      200        {object}  dto.ProductListResponse
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", catalog.DefaultLowStockThresh)
	limit := appinventory.NormalizeLimit(c.QueryInt("limit", catalog.DefaultLowStockLimit), catalog.DefaultLowStockLimit, catalog.MaxListLimit)
	out, err := h.uc.LowStock(c.UserContext(), actorFrom(c), threshold, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductList(out, limit, 0))
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Un stock distinto del actual se registra como ajuste "manual edit" en el kardex.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	p, err := h.uc.UpdateProduct(c.UserContext(), actorFrom(c), c.Params("id"), catalog.UpdateInput{
		Name:  in.Name,
		Price: in.Price,
		Stock: in.Stock,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// UpdatePrice godoc
// @Summary      Cambiar precio
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdatePriceRequest  true  "Nuevo precio"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/price [patch]
func (h *ProductHandler) UpdatePrice(c *fiber.Ctx) error {
	var in dto.UpdatePriceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	p, err := h.uc.UpdatePrice(c.UserContext(), actorFrom(c), c.Params("id"), in.Price)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// SetActive godoc
// @Summary      Activar o desactivar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.SetActiveRequest  true  "is_active"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/active [patch]
func (h *ProductHandler) SetActive(c *fiber.Ctx) error {
	var in dto.SetActiveRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.IsActive == nil {
		return badRequest(c, "VALIDATION", "is_active es requerido")
	}
	p, err := h.uc.SetActive(c.UserContext(), actorFrom(c), c.Params("id"), *in.IsActive)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Falla con 409 si el producto tiene ventas o movimientos registrados; en ese caso desactívelo.
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteProduct(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
