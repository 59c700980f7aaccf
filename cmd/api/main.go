package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/kardex-api/internal/application/cart"
	"github.com/jhoicas/kardex-api/internal/application/catalog"
	"github.com/jhoicas/kardex-api/internal/application/checkout"
	appinventory "github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/ports"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/internal/application/sales"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	infrakafka "github.com/jhoicas/kardex-api/internal/infrastructure/kafka"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	inframetrics "github.com/jhoicas/kardex-api/internal/infrastructure/metrics"
	"github.com/jhoicas/kardex-api/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/kardex-api/internal/interfaces/http"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// repositories implementación elegida por STORAGE_DRIVER.
type repositories struct {
	txRunner   repository.TxRunner
	products   repository.ProductRepository
	movements  repository.InventoryMovementRepository
	sales      repository.SaleRepository
	businesses repository.BusinessRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.App, cfg.OTEL)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer repos.close()

	// Eventos: Kafka si hay brokers, si no se descartan.
	var publisher ports.EventPublisher = ports.NopPublisher{}
	var kafkaPublisher *infrakafka.Publisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = infrakafka.NewPublisher(infrakafka.NewWriter(cfg.Kafka))
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos en Kafka")
	}

	var metricsRecorder ports.MetricsRecorder = ports.NopMetrics{}
	var promRecorder *inframetrics.Recorder
	if cfg.Metrics.Enabled {
		promRecorder = inframetrics.New(cfg.Metrics.Prefix)
		metricsRecorder = promRecorder
	}

	cartStore := memory.NewCartStore(time.Duration(cfg.Cart.TTLMinutes) * time.Minute)
	if promRecorder != nil {
		promRecorder.RegisterGauge("carts_open", "Carritos abiertos en memoria.", func() float64 {
			return float64(cartStore.Len())
		})
	}

	ledgerUC := appinventory.NewLedgerUseCase(repos.txRunner, repos.movements, publisher, metricsRecorder, log.Component("ledger"))
	catalogUC := catalog.NewUseCase(repos.txRunner, repos.products, ledgerUC)
	checkoutUC := checkout.NewUseCase(repos.txRunner, ledgerUC, publisher, metricsRecorder, log.Component("checkout"))
	cartUC := cart.NewUseCase(cartStore, repos.products, checkoutUC)
	salesUC := sales.NewUseCase(repos.sales, repos.businesses, infrapdf.NewTicketGenerator())
	reportUC := report.NewUseCase(repos.sales, repos.products)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sweepCarts(sweepCtx, cartStore, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Kardex API",
		}))
	}

	deps := httpRouter.RouterDeps{
		CatalogUC:   catalogUC,
		LedgerUC:    ledgerUC,
		CartUC:      cartUC,
		CheckoutUC:  checkoutUC,
		SalesUC:     salesUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
		ServiceName: cfg.App.Name,
	}
	if promRecorder != nil {
		deps.MetricsMiddleware = promRecorder.Middleware()
		deps.MetricsHandler = promRecorder.Handler()
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stopSweep()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar productor Kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar exportador de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &repositories{
			txRunner:   store,
			products:   store.Products(),
			movements:  store.Movements(),
			sales:      store.Sales(),
			businesses: store.Businesses(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &repositories{
		txRunner:   postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewInventoryMovementRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		businesses: postgres.NewBusinessRepository(pool),
		close:      pool.Close,
	}, nil
}

// sweepCarts descarta periódicamente los carritos vencidos.
func sweepCarts(ctx context.Context, store *memory.CartStore, log *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug().Int("carts", n).Msg("carritos vencidos descartados")
			}
		}
	}
}
