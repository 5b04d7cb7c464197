package subscription

import (
	"context"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

// SubscriptionTxRunner ejecuta una función dentro de una transacción con los
// repos de suscripciones atados a la tx. Cada suscripción de la corrida de
// morosidad se actualiza en su propia transacción: nunca hay transiciones a
// medio escribir.
type SubscriptionTxRunner interface {
	RunSubscription(ctx context.Context, fn func(
		subRepo repository.SchoolSubscriptionRepository,
		b2bRepo repository.B2BPaymentRepository,
	) error) error
}

// StateNotifier colaborador de notificaciones de cambio de estado. Post-commit,
// best-effort: una falla se registra y no afecta la transición ya persistida.
type StateNotifier interface {
	NotifySubscriptionStateChanged(ctx context.Context, sub *entity.SchoolSubscription, oldState, newState string) error
}
