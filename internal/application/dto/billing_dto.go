package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordPaymentRequest cuerpo de POST /api/charges/:id/payments.
// PaidAt es opcional: vacío = ahora.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// PaymentResponse un pago del libro mayor.
type PaymentResponse struct {
	ID                string          `json:"id"`
	ChargeID          string          `json:"charge_id"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	Reference         string          `json:"reference,omitempty"`
	ReversesPaymentID string          `json:"reverses_payment_id,omitempty"`
	PaidAt            time.Time       `json:"paid_at"`
	RecordedBy        string          `json:"recorded_by"`
}

// ChargeResponse estado de un cargo tras la reconciliación.
type ChargeResponse struct {
	ID         string          `json:"id"`
	SchoolID   string          `json:"school_id"`
	StudentID  string          `json:"student_id"`
	Category   string          `json:"category"`
	Concept    string          `json:"concept,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Status     string          `json:"status"`
	DueDate    time.Time       `json:"due_date"`
}

// RecordPaymentResponse cargo actualizado + pago recién insertado.
type RecordPaymentResponse struct {
	Charge  ChargeResponse  `json:"charge"`
	Payment PaymentResponse `json:"payment"`
}

// AssignScholarshipRequest cuerpo de POST /api/scholarships/:id/assignments.
type AssignScholarshipRequest struct {
	StudentIDs          []string         `json:"student_ids"`
	CustomDiscountValue *decimal.Decimal `json:"custom_discount_value"`
}

// AssignScholarshipResponse resultado del lote de asignación.
type AssignScholarshipResponse struct {
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
}

// DiscountRequest consulta del descuento efectivo de un estudiante.
type DiscountRequest struct {
	StudentID  string          `json:"student_id"`
	Category   string          `json:"category"`
	BaseAmount decimal.Decimal `json:"base_amount"`
}

// DiscountResponse descuento efectivo con las becas apiladas.
type DiscountResponse struct {
	StudentID  string          `json:"student_id"`
	Category   string          `json:"category"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Discount   decimal.Decimal `json:"discount"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}
