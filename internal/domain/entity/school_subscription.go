package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados gruesos de una suscripción de colegio.
const (
	SubscriptionActive      = "ACTIVE"
	SubscriptionGracePeriod = "GRACE_PERIOD"
	SubscriptionSuspended   = "SUSPENDED"
	SubscriptionCancelled   = "CANCELLED"
)

// Estados finos de pago B2B (máquina de estados de morosidad).
// CURRENT es el estado inicial y también el de recuperación.
const (
	B2BPaymentCurrent     = "CURRENT"
	B2BPaymentGracePeriod = "GRACE_PERIOD"
	B2BPaymentOverdue     = "OVERDUE"
	B2BPaymentSuspended   = "SUSPENDED"
	B2BPaymentCancelled   = "CANCELLED"
)

// Estados de una factura B2B (cuota adeudada por el colegio a la plataforma).
const (
	B2BInvoicePending  = "PENDING"
	B2BInvoicePartial  = "PARTIAL"
	B2BInvoiceVerified = "VERIFIED"
	B2BInvoiceOverdue  = "OVERDUE"
	B2BInvoicePaid     = "PAID"
)

// SchoolSubscription es la suscripción B2B de un colegio (una por colegio).
// B2BDelinquentSince se estampa una sola vez al primer vencimiento y solo se
// limpia cuando el colegio queda al día.
type SchoolSubscription struct {
	ID                 string
	SchoolID           string
	PlanType           string
	Status             string
	B2BPaymentStatus   string
	B2BGracePeriodDays int
	B2BDelinquentSince *time.Time
	B2BSuspendedAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Processable indica si la corrida de morosidad debe evaluar esta suscripción.
// SUSPENDED es terminal para el proceso automático; CANCELLED nunca se toca.
func (s *SchoolSubscription) Processable() bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.B2BPaymentStatus != B2BPaymentSuspended && s.B2BPaymentStatus != B2BPaymentCancelled
}

// SchoolB2BPayment es una cuota de facturación adeudada por el colegio.
type SchoolB2BPayment struct {
	ID             string
	SubscriptionID string
	PeriodLabel    string // ej. "2026-03"
	Amount         decimal.Decimal
	DueDate        time.Time
	Status         string
	VerifiedAt     *time.Time
	VerifiedByID   string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Outstanding indica si la cuota sigue pendiente de resolución.
func (p *SchoolB2BPayment) Outstanding() bool {
	switch p.Status {
	case B2BInvoicePending, B2BInvoicePartial, B2BInvoiceOverdue:
		return true
	}
	return false
}

// PastDue indica si la cuota está vencida en el instante dado.
func (p *SchoolB2BPayment) PastDue(now time.Time) bool {
	return p.Outstanding() && p.DueDate.Before(now)
}
