package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/intake"
	"github.com/soditex/almacen-api/internal/domain"
)

// QualityCheckHandler maneja las peticiones HTTP de control de calidad (protegido).
type QualityCheckHandler struct {
	uc *intake.SubmitQualityCheckUseCase
}

// NewQualityCheckHandler construye el handler.
func NewQualityCheckHandler(uc *intake.SubmitQualityCheckUseCase) *QualityCheckHandler {
	return &QualityCheckHandler{uc: uc}
}

// Submit registra el resultado de inspección de un producto. Si el estado pasa
// a aprobado, la cantidad disponible se acredita en las ubicaciones de recepción.
// POST /api/quality-checks
func (h *QualityCheckHandler) Submit(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitQualityCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.uc.Submit(c.Context(), userID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
