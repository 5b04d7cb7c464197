package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados (informativos; la pasarela es un colaborador externo).
const (
	PaymentMethodCash     = "EFECTIVO"
	PaymentMethodTransfer = "TRANSFERENCIA"
	PaymentMethodCard     = "TARJETA"
)

// Payment es un registro inmutable de dinero aplicado a un cargo.
// Nunca se edita: una reversa se modela como un registro de ajuste con monto
// negativo que referencia al pago original (ReversesPaymentID).
type Payment struct {
	ID                string
	ChargeID          string
	Amount            decimal.Decimal // negativo solo en ajustes de reversa
	Method            string
	Reference         string
	ReversesPaymentID string // vacío salvo en registros de reversa
	PaidAt            time.Time
	RecordedBy        string
	CreatedAt         time.Time
}

// IsReversal indica si el registro es un ajuste compensatorio.
func (p *Payment) IsReversal() bool {
	return p.ReversesPaymentID != ""
}
