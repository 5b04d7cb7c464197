package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
	domainsub "github.com/colegia/cobranza-api/internal/domain/subscription"
	"github.com/colegia/cobranza-api/pkg/logger"
)

// Tamaño de lote al paginar suscripciones elegibles.
const processorPageSize = 100

// DelinquencyProcessor recorre las suscripciones activas y avanza su máquina
// de estados de pago (CURRENT → GRACE_PERIOD → OVERDUE → SUSPENDED).
//
// Garantías:
//   - una sola corrida a la vez: un disparo concurrente recibe ErrBatchInProgress.
//   - idempotente: repetir la corrida sin cambios en los pagos no reescribe nada.
//   - un error por suscripción no aborta el lote: se captura y se continúa.
//   - si se agota el plazo, se detiene limpiamente tras la suscripción en curso,
//     guarda el cursor y la siguiente corrida reanuda desde ahí.
//
// La desescalada (pago recibido) NO ocurre aquí: es responsabilidad de la ruta
// de verificación de pagos (VerifyPaymentUseCase).
type DelinquencyProcessor struct {
	txRunner   SubscriptionTxRunner
	subRepo    repository.SchoolSubscriptionRepository
	b2bRepo    repository.B2BPaymentRepository
	cursorRepo repository.DelinquencyCursorRepository
	notifier   StateNotifier
	log        *logger.Logger
	timeout    time.Duration
	graceDays  int
	clock      func() time.Time

	mu      sync.Mutex
	running bool
}

// NewDelinquencyProcessor construye el procesador. timeout <= 0 = sin plazo;
// graceDays es el período de gracia por defecto para suscripciones sin uno propio.
func NewDelinquencyProcessor(
	txRunner SubscriptionTxRunner,
	subRepo repository.SchoolSubscriptionRepository,
	b2bRepo repository.B2BPaymentRepository,
	cursorRepo repository.DelinquencyCursorRepository,
	notifier StateNotifier,
	log *logger.Logger,
	timeout time.Duration,
	graceDays int,
) *DelinquencyProcessor {
	return &DelinquencyProcessor{
		txRunner:   txRunner,
		subRepo:    subRepo,
		b2bRepo:    b2bRepo,
		cursorRepo: cursorRepo,
		notifier:   notifier,
		log:        log,
		timeout:    timeout,
		graceDays:  graceDays,
		clock:      time.Now,
	}
}

// WithClock fija el reloj (tests).
func (p *DelinquencyProcessor) WithClock(clock func() time.Time) *DelinquencyProcessor {
	p.clock = clock
	return p
}

// tryAcquire intenta tomar el candado de corrida única.
func (p *DelinquencyProcessor) tryAcquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	p.running = true
	return true
}

func (p *DelinquencyProcessor) release() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// Run ejecuta una pasada completa de morosidad y devuelve el reporte agregado.
func (p *DelinquencyProcessor) Run(ctx context.Context) (*dto.DelinquencyReport, error) {
	if !p.tryAcquire() {
		return nil, domain.ErrBatchInProgress
	}
	defer p.release()

	now := p.clock()
	report := &dto.DelinquencyReport{StartedAt: now, Errors: []dto.DelinquencyError{}}

	deadline := time.Time{}
	if p.timeout > 0 {
		deadline = now.Add(p.timeout)
	}

	cursor, err := p.cursorRepo.Get()
	if err != nil {
		// Sin cursor legible se parte desde el inicio; la pasada es idempotente.
		p.log.Warn().Err(err).Msg("no se pudo leer el cursor de morosidad, se parte desde el inicio")
		cursor = ""
	}
	report.Resumed = cursor != ""

	lastProcessed := cursor
	for {
		page, err := p.subRepo.ListProcessablePage(lastProcessed, processorPageSize)
		if err != nil {
			// La corrida entera no puede continuar (almacén inaccesible).
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, sub := range page {
			if err := p.processOne(ctx, sub, now, report); err != nil {
				p.log.Error().Err(err).
					Str("subscription_id", sub.ID).
					Msg("error procesando suscripción, se continúa con la siguiente")
				report.Errors = append(report.Errors, dto.DelinquencyError{
					SubscriptionID: sub.ID,
					Message:        err.Error(),
				})
			}
			report.Processed++
			lastProcessed = sub.ID

			timedOut := !deadline.IsZero() && p.clock().After(deadline)
			if timedOut || ctx.Err() != nil {
				// Parada limpia: la suscripción en curso ya quedó consistente.
				if err := p.cursorRepo.Save(lastProcessed); err != nil {
					p.log.Error().Err(err).Msg("no se pudo guardar el cursor de morosidad")
				}
				report.Incomplete = true
				report.FinishedAt = p.clock()
				p.logSummary(report)
				return report, nil
			}
		}
	}

	if err := p.cursorRepo.Clear(); err != nil {
		p.log.Warn().Err(err).Msg("no se pudo limpiar el cursor de morosidad")
	}
	report.FinishedAt = p.clock()
	p.logSummary(report)
	return report, nil
}

// processOne evalúa y persiste la transición de una suscripción en su propia tx.
func (p *DelinquencyProcessor) processOne(ctx context.Context, sub *entity.SchoolSubscription, now time.Time, report *dto.DelinquencyReport) error {
	outstanding, err := p.b2bRepo.ListOutstandingBySubscription(sub.ID)
	if err != nil {
		return err
	}

	tr := domainsub.Evaluate(sub, outstanding, p.graceDays, now)
	if !tr.Changed {
		return nil
	}

	oldState := sub.B2BPaymentStatus
	err = p.txRunner.RunSubscription(ctx, func(
		subRepo repository.SchoolSubscriptionRepository,
		b2bRepo repository.B2BPaymentRepository,
	) error {
		sub.B2BPaymentStatus = tr.B2BPaymentStatus
		if tr.Status != "" {
			sub.Status = tr.Status
		}
		if tr.StampDelinquentSince && sub.B2BDelinquentSince == nil {
			stamp := now
			sub.B2BDelinquentSince = &stamp
		}
		if tr.SuspendedAt != nil {
			sub.B2BSuspendedAt = tr.SuspendedAt
		}
		sub.UpdatedAt = now
		if err := subRepo.Update(sub); err != nil {
			return err
		}
		if len(tr.MarkOverdueIDs) > 0 {
			return b2bRepo.MarkOverdue(tr.MarkOverdueIDs)
		}
		return nil
	})
	if err != nil {
		return err
	}

	switch tr.B2BPaymentStatus {
	case entity.B2BPaymentGracePeriod:
		report.GracePeriodCount++
	case entity.B2BPaymentOverdue:
		report.OverdueCount++
	case entity.B2BPaymentSuspended:
		report.SuspendedCount++
	}

	if p.notifier != nil {
		if err := p.notifier.NotifySubscriptionStateChanged(ctx, sub, oldState, tr.B2BPaymentStatus); err != nil {
			p.log.Warn().Err(err).
				Str("subscription_id", sub.ID).
				Str("new_state", tr.B2BPaymentStatus).
				Msg("notificación de cambio de estado falló (se ignora)")
		}
	}
	return nil
}

func (p *DelinquencyProcessor) logSummary(r *dto.DelinquencyReport) {
	p.log.Info().
		Int("processed", r.Processed).
		Int("grace_period", r.GracePeriodCount).
		Int("overdue", r.OverdueCount).
		Int("suspended", r.SuspendedCount).
		Int("errors", len(r.Errors)).
		Bool("incomplete", r.Incomplete).
		Msg("corrida de morosidad finalizada")
}
