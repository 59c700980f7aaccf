package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/cart"
	"github.com/jhoicas/kardex-api/internal/application/catalog"
	"github.com/jhoicas/kardex-api/internal/application/checkout"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *catalog.UseCase
	LedgerUC   *appinventory.LedgerUseCase
	CartUC     *cart.UseCase
	CheckoutUC *checkout.UseCase
	SalesUC    *sales.UseCase
	ReportUC   *report.UseCase
	JWTSecret  string
	Log        zerolog.Logger
	// Opcionales: instrumentación HTTP y endpoint /metrics.
	MetricsMiddleware fiber.Handler
	MetricsHandler    fiber.Handler
	ServiceName       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Log))
	if deps.MetricsMiddleware != nil {
		app.Use(deps.MetricsMiddleware)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", deps.MetricsHandler)
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC, deps.Log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Patch("/:id/price", productHandler.UpdatePrice)
	products.Patch("/:id/active", productHandler.SetActive)
	products.Delete("/:id", productHandler.Delete)

	// Inventory movements (kardex)
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.Log)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)

	// Carts
	carts := api.Group("/carts")
	cartHandler := NewCartHandler(deps.CartUC, deps.Log)
	carts.Post("/", cartHandler.Create)
	carts.Get("/:id", cartHandler.Get)
	carts.Delete("/:id", cartHandler.Discard)
	carts.Post("/:id/lines", cartHandler.AddLine)
	carts.Delete("/:id/lines", cartHandler.Clear)
	carts.Delete("/:id/lines/:index", cartHandler.RemoveLine)
	carts.Post("/:id/checkout", cartHandler.Checkout)

	// Sales
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.CheckoutUC, deps.SalesUC, deps.Log)
	salesGroup.Post("/", saleHandler.SellOne)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/ticket", saleHandler.Ticket)

	// Reports
	reportHandler := NewReportHandler(deps.ReportUC, deps.Log)
	api.Get("/reports/summary", reportHandler.Summary)
}
