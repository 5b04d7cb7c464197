package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/colegia/cobranza-api/internal/application/billing"
	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
)

// ChargeHandler maneja las peticiones HTTP del libro mayor de cargos (protegido).
type ChargeHandler struct {
	uc *billing.RecordPaymentUseCase
}

// NewChargeHandler construye el handler.
func NewChargeHandler(uc *billing.RecordPaymentUseCase) *ChargeHandler {
	return &ChargeHandler{uc: uc}
}

// RecordPayment registra un pago contra un cargo y recalcula su estado.
// POST /api/charges/:id/payments
func (h *ChargeHandler) RecordPayment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	chargeID := c.Params("id")
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.RecordPayment(c.Context(), chargeID, userID, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el monto debe ser mayor a cero"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cargo no encontrado"})
		case errors.Is(err, domain.ErrChargeClosed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CHARGE_CLOSED", Message: domain.ErrChargeClosed.Error()})
		case errors.Is(err, domain.ErrOverpaymentRejected):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVERPAYMENT", Message: domain.ErrOverpaymentRejected.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListPayments lista los pagos de un cargo (paid_at descendente).
// GET /api/charges/:id/payments
func (h *ChargeHandler) ListPayments(c *fiber.Ctx) error {
	chargeID := c.Params("id")
	if chargeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	payments, err := h.uc.ListPayments(c.Context(), chargeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cargo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(payments)
}

// ReversePayment crea el ajuste compensatorio de un pago.
// POST /api/charges/:id/payments/:paymentId/reverse
func (h *ChargeHandler) ReversePayment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	chargeID := c.Params("id")
	paymentID := c.Params("paymentId")
	resp, err := h.uc.ReversePayment(c.Context(), chargeID, paymentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cargo o pago no encontrado"})
		case errors.Is(err, domain.ErrPaymentReversed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_REVERSED", Message: domain.ErrPaymentReversed.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
