package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/ledger"
	"github.com/soditex/almacen-api/internal/domain"
	"github.com/soditex/almacen-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del libro de stock (protegido).
type StockHandler struct {
	uc *ledger.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

func toStockResponse(e *entity.StockEntry) dto.StockEntryResponse {
	return dto.StockEntryResponse{
		ProductID:     e.ProductID,
		LocationID:    e.LocationID,
		ManifestID:    e.ManifestID,
		Quantity:      e.Quantity,
		MarginPercent: e.MarginPercent,
		Currency:      e.Currency,
		UnitPrice:     e.UnitPrice,
		LastUpdatedBy: e.LastUpdatedBy,
	}
}

func stockError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "entrada de stock o producto no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// Get consulta la entrada del libro para un producto en una ubicación.
// GET /api/stock?product_id=...&location_id=...
func (h *StockHandler) Get(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	locationID := c.Query("location_id")
	if productID == "" || locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y location_id requeridos"})
	}
	entry, err := h.uc.Get(c.Context(), productID, locationID)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(toStockResponse(entry))
}

// Adjust sobreescribe la cantidad de una entrada con un valor absoluto
// (conteo físico, corrección manual).
// PUT /api/stock/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.Adjust(c.Context(), userID, in.ProductID, in.LocationID, in.NewQuantity)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(toStockResponse(entry))
}

// UpsertPricing fija margen y moneda de una entrada, derivando el precio de
// venta desde el precio canónico del producto.
// PUT /api/stock/pricing
func (h *StockHandler) UpsertPricing(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpsertStockPricingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.uc.UpsertPricing(c.Context(), userID, in.ProductID, in.LocationID, in.MarginPercent, in.Currency)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(toStockResponse(entry))
}
