package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/colegia/cobranza-api/internal/application/billing"
	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
)

// ScholarshipHandler maneja las peticiones HTTP de becas (protegido).
type ScholarshipHandler struct {
	uc *billing.ScholarshipUseCase
}

// NewScholarshipHandler construye el handler.
func NewScholarshipHandler(uc *billing.ScholarshipUseCase) *ScholarshipHandler {
	return &ScholarshipHandler{uc: uc}
}

// Assign asigna una beca a un lote de estudiantes.
// POST /api/scholarships/:id/assignments
func (h *ScholarshipHandler) Assign(c *fiber.Ctx) error {
	scholarshipID := c.Params("id")
	var in dto.AssignScholarshipRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Assign(c.Context(), scholarshipID, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos o estudiante inactivo"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "beca o estudiante no encontrado"})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el estudiante no pertenece al colegio de la beca"})
		case errors.Is(err, domain.ErrCapacityExceeded):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CAPACITY_EXCEEDED", Message: domain.ErrCapacityExceeded.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// EffectiveDiscount calcula el descuento efectivo de un estudiante para un monto base.
// POST /api/scholarships/discount
func (h *ScholarshipHandler) EffectiveDiscount(c *fiber.Ctx) error {
	var in dto.DiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.EffectiveDiscount(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "student_id y base_amount > 0 requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}
