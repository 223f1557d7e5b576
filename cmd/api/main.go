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
	"github.com/soditex/almacen-api/internal/application/intake"
	"github.com/soditex/almacen-api/internal/application/issuance"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/application/transfer"
	"github.com/soditex/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/soditex/almacen-api/internal/interfaces/http"
	"github.com/soditex/almacen-api/pkg/config"
	"github.com/soditex/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel(),
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	manifestRepo := postgres.NewManifestRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	qualityCheckUC := intake.NewSubmitQualityCheckUseCase(txRunner, productRepo, locationRepo)
	manifestUC := transfer.NewManifestUseCase(txRunner, manifestRepo, productRepo, locationRepo, transfer.Options{
		RepriceCatalogOnApproval: cfg.Transfer.RepriceCatalogOnApproval,
	})
	invoiceUC := issuance.NewInvoiceUseCase(txRunner, invoiceRepo, productRepo, locationRepo)
	stockUC := ledger.NewUseCase(txRunner, stockRepo, productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		QualityCheckUC: qualityCheckUC,
		ManifestUC:     manifestUC,
		InvoiceUC:      invoiceUC,
		StockUC:        stockUC,
		JWTSecret:      cfg.JWT.Secret,
	})

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

	log.Info().Msg("aplicación detenida")
}
