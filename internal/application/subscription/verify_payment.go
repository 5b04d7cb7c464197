package subscription

import (
	"context"
	"time"

	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
	"github.com/colegia/cobranza-api/pkg/logger"
)

// VerifyPaymentUseCase es la otra mitad de la máquina de estados de morosidad:
// marca cuotas B2B como verificadas y desescala la suscripción a CURRENT cuando
// ya no queda ninguna cuota vencida. La suspensión NO se revierte aquí: salir
// de SUSPENDED requiere la acción manual Reactivate.
type VerifyPaymentUseCase struct {
	txRunner   SubscriptionTxRunner
	b2bRepo    repository.B2BPaymentRepository
	subRepo    repository.SchoolSubscriptionRepository
	schoolRepo repository.SchoolRepository
	notifier   StateNotifier
	log        *logger.Logger
	clock      func() time.Time
}

// NewVerifyPaymentUseCase construye el caso de uso.
func NewVerifyPaymentUseCase(
	txRunner SubscriptionTxRunner,
	b2bRepo repository.B2BPaymentRepository,
	subRepo repository.SchoolSubscriptionRepository,
	schoolRepo repository.SchoolRepository,
	notifier StateNotifier,
	log *logger.Logger,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		txRunner:   txRunner,
		b2bRepo:    b2bRepo,
		subRepo:    subRepo,
		schoolRepo: schoolRepo,
		notifier:   notifier,
		log:        log,
		clock:      time.Now,
	}
}

// WithClock fija el reloj (tests).
func (uc *VerifyPaymentUseCase) WithClock(clock func() time.Time) *VerifyPaymentUseCase {
	uc.clock = clock
	return uc
}

// Verify marca la cuota como VERIFIED y reevalúa la suscripción: si no queda
// ninguna cuota vencida pendiente y el estado fino es GRACE_PERIOD u OVERDUE,
// vuelve a CURRENT y se limpia b2b_delinquent_since.
func (uc *VerifyPaymentUseCase) Verify(ctx context.Context, paymentID, verifiedByID string, in dto.VerifyB2BPaymentRequest) (*dto.B2BPaymentResponse, error) {
	if paymentID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()

	var payment *entity.SchoolB2BPayment
	var sub *entity.SchoolSubscription
	var oldState, newState string

	err := uc.txRunner.RunSubscription(ctx, func(
		subRepo repository.SchoolSubscriptionRepository,
		b2bRepo repository.B2BPaymentRepository,
	) error {
		var err error
		payment, err = b2bRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		if payment.Status == entity.B2BInvoiceVerified || payment.Status == entity.B2BInvoicePaid {
			return domain.ErrConflict
		}

		payment.Status = entity.B2BInvoiceVerified
		payment.VerifiedAt = &now
		payment.VerifiedByID = verifiedByID
		if in.Notes != "" {
			payment.Notes = in.Notes
		}
		payment.UpdatedAt = now
		if err := b2bRepo.Update(payment); err != nil {
			return err
		}

		sub, err = subRepo.GetByID(payment.SubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrNotFound
		}

		// Reevaluación de recuperación dentro de la misma tx que la verificación.
		recovered, err := uc.canRecover(b2bRepo, sub, now)
		if err != nil {
			return err
		}
		if recovered {
			oldState = sub.B2BPaymentStatus
			sub.B2BPaymentStatus = entity.B2BPaymentCurrent
			sub.B2BDelinquentSince = nil
			sub.UpdatedAt = now
			newState = entity.B2BPaymentCurrent
			return subRepo.Update(sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if newState != "" && uc.notifier != nil {
		if err := uc.notifier.NotifySubscriptionStateChanged(ctx, sub, oldState, newState); err != nil {
			uc.log.Warn().Err(err).
				Str("subscription_id", sub.ID).
				Msg("notificación de recuperación falló (se ignora)")
		}
	}

	return toB2BPaymentResponse(payment), nil
}

// canRecover decide si la suscripción puede volver a CURRENT: estado fino en
// GRACE_PERIOD u OVERDUE y ninguna cuota pendiente ya vencida.
func (uc *VerifyPaymentUseCase) canRecover(b2bRepo repository.B2BPaymentRepository, sub *entity.SchoolSubscription, now time.Time) (bool, error) {
	switch sub.B2BPaymentStatus {
	case entity.B2BPaymentGracePeriod, entity.B2BPaymentOverdue:
	default:
		return false, nil
	}
	outstanding, err := b2bRepo.ListOutstandingBySubscription(sub.ID)
	if err != nil {
		return false, err
	}
	for _, p := range outstanding {
		if p.PastDue(now) {
			return false, nil
		}
	}
	return true, nil
}

// Reactivate es la acción manual que saca una suscripción de SUSPENDED:
// vuelve a ACTIVE/CURRENT y limpia las marcas de morosidad. No toca las cuotas
// pendientes; si siguen vencidas la próxima corrida volverá a escalar.
func (uc *VerifyPaymentUseCase) Reactivate(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error) {
	if subscriptionID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()

	var sub *entity.SchoolSubscription
	err := uc.txRunner.RunSubscription(ctx, func(
		subRepo repository.SchoolSubscriptionRepository,
		b2bRepo repository.B2BPaymentRepository,
	) error {
		var err error
		sub, err = subRepo.GetByID(subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrNotFound
		}
		if sub.Status == entity.SubscriptionCancelled {
			return domain.ErrSubscriptionClosed
		}
		if sub.B2BPaymentStatus != entity.B2BPaymentSuspended {
			return domain.ErrConflict
		}
		// Un colegio dado de baja en el directorio no se reactiva.
		school, err := uc.schoolRepo.GetByID(sub.SchoolID)
		if err != nil {
			return err
		}
		if school == nil || !school.IsActive {
			return domain.ErrForbidden
		}
		sub.Status = entity.SubscriptionActive
		sub.B2BPaymentStatus = entity.B2BPaymentCurrent
		sub.B2BDelinquentSince = nil
		sub.B2BSuspendedAt = nil
		sub.UpdatedAt = now
		return subRepo.Update(sub)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("subscription_id", sub.ID).
		Msg("suscripción reactivada manualmente")
	if uc.notifier != nil {
		if err := uc.notifier.NotifySubscriptionStateChanged(ctx, sub, entity.B2BPaymentSuspended, entity.B2BPaymentCurrent); err != nil {
			uc.log.Warn().Err(err).
				Str("subscription_id", sub.ID).
				Msg("notificación de reactivación falló (se ignora)")
		}
	}

	return toSubscriptionResponse(sub), nil
}

func toB2BPaymentResponse(p *entity.SchoolB2BPayment) *dto.B2BPaymentResponse {
	return &dto.B2BPaymentResponse{
		ID:             p.ID,
		SubscriptionID: p.SubscriptionID,
		PeriodLabel:    p.PeriodLabel,
		DueDate:        p.DueDate,
		Status:         p.Status,
		VerifiedAt:     p.VerifiedAt,
		VerifiedByID:   p.VerifiedByID,
		Notes:          p.Notes,
	}
}

func toSubscriptionResponse(s *entity.SchoolSubscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		ID:                 s.ID,
		SchoolID:           s.SchoolID,
		PlanType:           s.PlanType,
		Status:             s.Status,
		B2BPaymentStatus:   s.B2BPaymentStatus,
		B2BGracePeriodDays: s.B2BGracePeriodDays,
		B2BDelinquentSince: s.B2BDelinquentSince,
		B2BSuspendedAt:     s.B2BSuspendedAt,
	}
}
