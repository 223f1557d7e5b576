package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soditex/almacen-api/internal/application/intake"
	"github.com/soditex/almacen-api/internal/application/issuance"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	QualityCheckUC *intake.SubmitQualityCheckUseCase
	ManifestUC     *transfer.ManifestUseCase
	InvoiceUC      *issuance.InvoiceUseCase
	StockUC        *ledger.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todas las operaciones de inventario
// requieren Bearer Token; las mutaciones además exigen rol: inspector para
// control de calidad, bodeguero para manifiestos y stock, vendedor para ventas
// (admin pasa en todas).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Control de calidad (recepción)
	qc := protected.Group("/quality-checks")
	qcHandler := NewQualityCheckHandler(deps.QualityCheckUC)
	qc.Post("/", RequireRole("admin", "inspector"), qcHandler.Submit)

	// Manifiestos de traslado
	manifests := protected.Group("/manifests")
	manifestHandler := NewManifestHandler(deps.ManifestUC)
	bodega := RequireRole("admin", "bodeguero")
	manifests.Post("/", bodega, manifestHandler.Create)
	manifests.Get("/:id", manifestHandler.GetByID)
	manifests.Put("/:id", bodega, manifestHandler.Edit)
	manifests.Post("/:id/approve", bodega, manifestHandler.Approve)
	manifests.Delete("/:id", bodega, manifestHandler.Delete)

	// Facturas de venta
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	ventas := RequireRole("admin", "vendedor")
	invoices.Post("/", ventas, invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", ventas, invoiceHandler.Edit)
	invoices.Delete("/:id", ventas, invoiceHandler.Delete)

	// Libro de stock
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/", stockHandler.Get)
	stock.Put("/adjust", bodega, stockHandler.Adjust)
	stock.Put("/pricing", bodega, stockHandler.UpsertPricing)
}
