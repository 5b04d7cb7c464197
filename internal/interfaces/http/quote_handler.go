package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/colegia/cobranza-api/internal/application/billing"
	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
)

// QuoteHandler maneja cotizaciones y administración del catálogo (protegido).
type QuoteHandler struct {
	uc *billing.QuoteUseCase
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *billing.QuoteUseCase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// Calculate cotiza un plan para una cantidad estimada de estudiantes.
// POST /api/quotes
func (h *QuoteHandler) Calculate(c *fiber.Ctx) error {
	var in dto.CalculateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.CalculateQuote(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estimated_students debe ser mayor a cero"})
		case errors.Is(err, domain.ErrPlanNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PLAN_NOT_FOUND", Message: domain.ErrPlanNotFound.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// DefinePlan crea o reemplaza un plan por su clave natural.
// PUT /api/plans/:type
func (h *QuoteHandler) DefinePlan(c *fiber.Ctx) error {
	planType := c.Params("type")
	var in dto.DefinePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	plan, err := h.uc.DefineOrReplacePlan(c.Context(), planType, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos de plan inválidos"})
		case errors.Is(err, domain.ErrInvalidShares):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_SHARES", Message: domain.ErrInvalidShares.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(plan)
}

// DefineTier crea o reemplaza un tramo de instalación por nombre.
// PUT /api/setup-fee-tiers/:name
func (h *QuoteHandler) DefineTier(c *fiber.Ctx) error {
	name := c.Params("name")
	var in dto.DefineTierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tier, err := h.uc.DefineOrReplaceTier(c.Context(), name, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos de tramo inválidos"})
		case errors.Is(err, domain.ErrTierOverlap):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "TIER_OVERLAP", Message: domain.ErrTierOverlap.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(tier)
}
