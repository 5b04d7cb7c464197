package repository

import "github.com/colegia/cobranza-api/internal/domain/entity"

// SchoolSubscriptionRepository define el puerto de persistencia para suscripciones B2B.
type SchoolSubscriptionRepository interface {
	GetByID(id string) (*entity.SchoolSubscription, error)
	// ListProcessablePage devuelve un lote de suscripciones elegibles para la
	// corrida de morosidad (status ACTIVE, estado fino no SUSPENDED/CANCELLED),
	// ordenadas por id ascendente y empezando después de afterID (cursor).
	ListProcessablePage(afterID string, limit int) ([]*entity.SchoolSubscription, error)
	Update(sub *entity.SchoolSubscription) error
}

// B2BPaymentRepository define el puerto para cuotas de facturación B2B.
type B2BPaymentRepository interface {
	GetByID(id string) (*entity.SchoolB2BPayment, error)
	// ListOutstandingBySubscription devuelve las cuotas en estado
	// PENDING/PARTIAL/OVERDUE ordenadas por due_date ascendente.
	ListOutstandingBySubscription(subscriptionID string) ([]*entity.SchoolB2BPayment, error)
	Update(payment *entity.SchoolB2BPayment) error
	// MarkOverdue pasa a OVERDUE las cuotas indicadas (al suspender).
	MarkOverdue(ids []string) error
}

// DelinquencyCursorRepository persiste el progreso de la corrida de morosidad
// para reanudar en la siguiente ejecución si se agota el plazo.
type DelinquencyCursorRepository interface {
	// Get devuelve el último ID de suscripción procesado ("" si no hay cursor).
	Get() (string, error)
	Save(lastSubscriptionID string) error
	Clear() error
}
