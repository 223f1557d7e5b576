package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/soditex/almacen-api/internal/application/dto"
	"github.com/soditex/almacen-api/internal/application/transfer"
	"github.com/soditex/almacen-api/internal/domain"
)

// ManifestHandler maneja las peticiones HTTP de manifiestos de traslado (protegido).
type ManifestHandler struct {
	uc *transfer.ManifestUseCase
}

// NewManifestHandler construye el handler.
func NewManifestHandler(uc *transfer.ManifestUseCase) *ManifestHandler {
	return &ManifestHandler{uc: uc}
}

func manifestError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "manifiesto, producto o ubicación no encontrado"})
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el manifiesto ya fue aprobado"})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "número de caja ya registrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// Create crea un manifiesto en borrador y descuenta el stock de origen.
// POST /api/manifests
func (h *ManifestHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateManifestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	manifest, err := h.uc.Create(c.Context(), userID, in)
	if err != nil {
		return manifestError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(manifest)
}

// GetByID obtiene un manifiesto con sus líneas.
// GET /api/manifests/:id
func (h *ManifestHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	manifest, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return manifestError(c, err)
	}
	return c.JSON(manifest)
}

// Edit reemplaza las líneas de un manifiesto en borrador, reconciliando el
// stock de origen con las diferencias.
// PUT /api/manifests/:id
func (h *ManifestHandler) Edit(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	var in dto.EditManifestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	manifest, err := h.uc.Edit(c.Context(), userID, id, in)
	if err != nil {
		return manifestError(c, err)
	}
	return c.JSON(manifest)
}

// Approve aprueba un manifiesto en borrador y acredita las líneas en el destino.
// POST /api/manifests/:id/approve
func (h *ManifestHandler) Approve(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	var in dto.ApproveManifestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	manifest, err := h.uc.Approve(c.Context(), userID, id, in)
	if err != nil {
		return manifestError(c, err)
	}
	return c.JSON(manifest)
}

// Delete elimina un manifiesto en borrador y restaura el stock de origen.
// DELETE /api/manifests/:id
func (h *ManifestHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return manifestError(c, err)
	}
	return c.JSON(fiber.Map{"message": "manifiesto eliminado"})
}
