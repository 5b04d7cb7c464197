package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un cargo estudiantil.
const (
	ChargeStatusPending   = "PENDING"   // Sin pagos registrados, aún no vencido
	ChargeStatusParcial   = "PARCIAL"   // Pagado parcialmente (0 < pagado < monto)
	ChargeStatusPagado    = "PAGADO"    // Pagado en su totalidad (pagado >= monto)
	ChargeStatusVencido   = "VENCIDO"   // Sin pagos y fecha límite superada
	ChargeStatusCancelado = "CANCELADO" // Anulado; no admite más pagos (soft-cancel)
)

// Charge representa un monto adeudado por un estudiante (matrícula, pensión, otros).
// AmountPaid es siempre derivado: suma de los pagos no reversados del cargo.
type Charge struct {
	ID         string
	SchoolID   string
	StudentID  string
	Category   string // categoría del cargo (TUITION, FEE, ...) — define qué becas aplican
	Concept    string
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	Status     string
	DueDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecomputeStatus deriva el estado a partir de AmountPaid y la fecha de vencimiento.
// CANCELADO nunca se recalcula aquí: la anulación es una decisión explícita.
func (c *Charge) RecomputeStatus(now time.Time) {
	if c.Status == ChargeStatusCancelado {
		return
	}
	switch {
	case c.AmountPaid.GreaterThanOrEqual(c.Amount):
		c.Status = ChargeStatusPagado
	case c.AmountPaid.GreaterThan(decimal.Zero):
		c.Status = ChargeStatusParcial
	case c.DueDate.Before(now):
		c.Status = ChargeStatusVencido
	default:
		c.Status = ChargeStatusPending
	}
}

// Outstanding devuelve el saldo pendiente (nunca negativo).
func (c *Charge) Outstanding() decimal.Decimal {
	rest := c.Amount.Sub(c.AmountPaid)
	if rest.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return rest
}
