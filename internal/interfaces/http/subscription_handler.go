package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/colegia/cobranza-api/internal/application/dto"
	appsub "github.com/colegia/cobranza-api/internal/application/subscription"
	"github.com/colegia/cobranza-api/internal/domain"
)

// SubscriptionHandler maneja la corrida de morosidad y la verificación de pagos B2B.
type SubscriptionHandler struct {
	processor *appsub.DelinquencyProcessor
	verifyUC  *appsub.VerifyPaymentUseCase
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(processor *appsub.DelinquencyProcessor, verifyUC *appsub.VerifyPaymentUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{processor: processor, verifyUC: verifyUC}
}

// RunDelinquencyPass ejecuta una pasada de morosidad. Idempotente: pensado para
// el scheduler; un disparo manual concurrente recibe 409.
// POST /api/subscriptions/delinquency-pass
func (h *SubscriptionHandler) RunDelinquencyPass(c *fiber.Ctx) error {
	report, err := h.processor.Run(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrBatchInProgress) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BATCH_IN_PROGRESS", Message: domain.ErrBatchInProgress.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}

// VerifyB2BPayment marca una cuota B2B como verificada y reevalúa la recuperación.
// POST /api/b2b-payments/:id/verify
func (h *SubscriptionHandler) VerifyB2BPayment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	paymentID := c.Params("id")
	var in dto.VerifyB2BPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.verifyUC.Verify(c.Context(), paymentID, userID, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cuota no encontrada"})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_VERIFIED", Message: "la cuota ya fue verificada o pagada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}

// Reactivate saca manualmente una suscripción de SUSPENDED.
// POST /api/subscriptions/:id/reactivate
func (h *SubscriptionHandler) Reactivate(c *fiber.Ctx) error {
	subscriptionID := c.Params("id")
	resp, err := h.verifyUC.Reactivate(c.Context(), subscriptionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "suscripción no encontrada"})
		case errors.Is(err, domain.ErrSubscriptionClosed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANCELLED", Message: domain.ErrSubscriptionClosed.Error()})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "SCHOOL_INACTIVE", Message: "el colegio está dado de baja"})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_SUSPENDED", Message: "la suscripción no está suspendida"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resp)
}
