package subscription

import (
	"sort"
	"time"

	"github.com/colegia/cobranza-api/internal/domain/entity"
)

// Días adicionales tras el período de gracia antes de suspender.
const suspensionDaysAfterGrace = 30

// Transition describe el resultado de evaluar la morosidad de una suscripción.
// Es un cálculo puro: el procesador decide qué persistir a partir de él.
type Transition struct {
	// Changed indica si hay algo que escribir. Reevaluar con los mismos datos
	// produce Changed=false en la segunda pasada (idempotencia).
	Changed bool

	B2BPaymentStatus string
	Status           string

	// StampDelinquentSince pide estampar B2BDelinquentSince = now solo si la
	// suscripción aún no tiene la marca (regla de estampado único).
	StampDelinquentSince bool

	// SuspendedAt se fija solo en la transición a SUSPENDED.
	SuspendedAt *time.Time

	// MarkOverdueIDs: cuotas vencidas que deben pasar a estado OVERDUE
	// (solo al suspender).
	MarkOverdueIDs []string
}

// Evaluate aplica las reglas de la máquina de estados de morosidad sobre las
// cuotas pendientes de una suscripción. Umbrales, del más severo al más leve,
// medidos desde la cuota vencida MÁS ANTIGUA:
//
//	daysSinceDue > gracia+30  → SUSPENDED (terminal para este proceso)
//	daysSinceDue > gracia     → OVERDUE
//	daysSinceDue > 0          → GRACE_PERIOD
//	sin cuotas vencidas       → sin transición (CURRENT implícito)
//
// defaultGraceDays aplica cuando la suscripción no define su propio período.
func Evaluate(sub *entity.SchoolSubscription, outstanding []*entity.SchoolB2BPayment, defaultGraceDays int, now time.Time) Transition {
	if !sub.Processable() {
		return Transition{}
	}

	pastDue := make([]*entity.SchoolB2BPayment, 0, len(outstanding))
	for _, p := range outstanding {
		if p.PastDue(now) {
			pastDue = append(pastDue, p)
		}
	}
	if len(pastDue) == 0 {
		// Nada vencido: no hay escritura aunque el estado fino no sea CURRENT;
		// la desescalada es responsabilidad de la verificación de pagos.
		return Transition{}
	}
	sort.SliceStable(pastDue, func(i, j int) bool {
		return pastDue[i].DueDate.Before(pastDue[j].DueDate)
	})

	oldest := pastDue[0]
	daysSinceDue := int(now.Sub(oldest.DueDate).Hours() / 24)
	grace := sub.B2BGracePeriodDays
	if grace <= 0 {
		grace = defaultGraceDays
	}

	switch {
	case daysSinceDue > grace+suspensionDaysAfterGrace:
		if sub.B2BPaymentStatus == entity.B2BPaymentSuspended {
			return Transition{}
		}
		suspendedAt := now
		ids := make([]string, 0, len(pastDue))
		for _, p := range pastDue {
			if p.Status != entity.B2BInvoiceOverdue {
				ids = append(ids, p.ID)
			}
		}
		return Transition{
			Changed:          true,
			B2BPaymentStatus: entity.B2BPaymentSuspended,
			Status:           entity.SubscriptionSuspended,
			SuspendedAt:      &suspendedAt,
			MarkOverdueIDs:   ids,
		}

	case daysSinceDue > grace:
		if sub.B2BPaymentStatus == entity.B2BPaymentOverdue && sub.B2BDelinquentSince != nil {
			return Transition{}
		}
		return Transition{
			Changed:              true,
			B2BPaymentStatus:     entity.B2BPaymentOverdue,
			Status:               sub.Status,
			StampDelinquentSince: sub.B2BDelinquentSince == nil,
		}

	default: // daysSinceDue > 0 garantizado: toda cuota en pastDue ya venció
		if sub.B2BPaymentStatus == entity.B2BPaymentGracePeriod && sub.B2BDelinquentSince != nil {
			return Transition{}
		}
		return Transition{
			Changed:              true,
			B2BPaymentStatus:     entity.B2BPaymentGracePeriod,
			Status:               sub.Status,
			StampDelinquentSince: sub.B2BDelinquentSince == nil,
		}
	}
}
