package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
	"github.com/colegia/cobranza-api/pkg/logger"
)

// RecordPaymentUseCase registra pagos contra cargos y mantiene la invariante
// del libro mayor: amount_paid = suma de pagos no reversados, status derivado.
type RecordPaymentUseCase struct {
	txRunner          LedgerTxRunner
	chargeRepo        repository.ChargeRepository
	paymentRepo       repository.PaymentRepository
	notifier          Notifier
	log               *logger.Logger
	overpaymentPolicy string
	clock             func() time.Time
}

// NewRecordPaymentUseCase construye el caso de uso.
// overpaymentPolicy: OverpaymentAccept u OverpaymentReject (ver ports.go).
func NewRecordPaymentUseCase(
	txRunner LedgerTxRunner,
	chargeRepo repository.ChargeRepository,
	paymentRepo repository.PaymentRepository,
	notifier Notifier,
	log *logger.Logger,
	overpaymentPolicy string,
) *RecordPaymentUseCase {
	if overpaymentPolicy == "" {
		overpaymentPolicy = OverpaymentAccept
	}
	return &RecordPaymentUseCase{
		txRunner:          txRunner,
		chargeRepo:        chargeRepo,
		paymentRepo:       paymentRepo,
		notifier:          notifier,
		log:               log,
		overpaymentPolicy: overpaymentPolicy,
		clock:             time.Now,
	}
}

// WithClock fija el reloj (tests).
func (uc *RecordPaymentUseCase) WithClock(clock func() time.Time) *RecordPaymentUseCase {
	uc.clock = clock
	return uc
}

// RecordPayment inserta un pago y recalcula el cargo en una sola transacción.
//
// Reglas:
//   - amount > 0 (ErrInvalidInput).
//   - el cargo debe existir (ErrNotFound) y no estar CANCELADO (ErrChargeClosed).
//   - la fila del cargo se bloquea (FOR UPDATE): dos pagos concurrentes sobre el
//     mismo cargo se serializan y ninguno recalcula sobre un amount_paid viejo.
//   - sobrepago según política: accept deja el cargo PAGADO sin crédito; reject
//     devuelve ErrOverpaymentRejected sin escribir nada.
//
// La notificación se dispara después del commit; si falla solo se registra.
func (uc *RecordPaymentUseCase) RecordPayment(ctx context.Context, chargeID, recordedBy string, in dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	if chargeID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := uc.clock()
	paidAt := now
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}

	var charge *entity.Charge
	payment := &entity.Payment{
		ID:         uuid.New().String(),
		ChargeID:   chargeID,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		PaidAt:     paidAt,
		RecordedBy: recordedBy,
		CreatedAt:  now,
	}

	err := uc.txRunner.RunLedger(ctx, func(
		chargeRepo repository.ChargeRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		var err error
		charge, err = chargeRepo.GetByIDForUpdate(chargeID)
		if err != nil {
			return err
		}
		if charge == nil {
			return domain.ErrNotFound
		}
		if charge.Status == entity.ChargeStatusCancelado {
			return domain.ErrChargeClosed
		}
		if uc.overpaymentPolicy == OverpaymentReject &&
			charge.AmountPaid.Add(in.Amount).GreaterThan(charge.Amount) {
			return domain.ErrOverpaymentRejected
		}

		if err := paymentRepo.Create(payment); err != nil {
			return err
		}
		// amount_paid siempre se deriva de la suma real de pagos, nunca se
		// incrementa en memoria: la suma es la fuente de verdad.
		paid, err := paymentRepo.SumByChargeID(chargeID)
		if err != nil {
			return err
		}
		charge.AmountPaid = paid
		charge.RecomputeStatus(now)
		charge.UpdatedAt = now
		return chargeRepo.Update(charge)
	})
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyPaymentRecorded(ctx, charge, payment); err != nil {
			uc.log.Warn().Err(err).
				Str("charge_id", charge.ID).
				Str("payment_id", payment.ID).
				Msg("notificación de pago falló (se ignora, el pago ya quedó registrado)")
		}
	}

	resp := &dto.RecordPaymentResponse{
		Charge:  toChargeResponse(charge),
		Payment: toPaymentResponse(payment),
	}
	return resp, nil
}

// ReversePayment crea el ajuste compensatorio de un pago: un registro con monto
// negativo que referencia al original. El historial nunca se edita en sitio.
func (uc *RecordPaymentUseCase) ReversePayment(ctx context.Context, chargeID, paymentID, recordedBy string) (*dto.RecordPaymentResponse, error) {
	if chargeID == "" || paymentID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()

	var charge *entity.Charge
	var reversal *entity.Payment

	err := uc.txRunner.RunLedger(ctx, func(
		chargeRepo repository.ChargeRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		var err error
		charge, err = chargeRepo.GetByIDForUpdate(chargeID)
		if err != nil {
			return err
		}
		if charge == nil {
			return domain.ErrNotFound
		}
		original, err := paymentRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		if original == nil || original.ChargeID != chargeID {
			return domain.ErrNotFound
		}
		if original.IsReversal() {
			return domain.ErrInvalidInput
		}
		reversed, err := paymentRepo.HasReversal(paymentID)
		if err != nil {
			return err
		}
		if reversed {
			return domain.ErrPaymentReversed
		}

		reversal = &entity.Payment{
			ID:                uuid.New().String(),
			ChargeID:          chargeID,
			Amount:            original.Amount.Neg(),
			Method:            original.Method,
			Reference:         original.Reference,
			ReversesPaymentID: original.ID,
			PaidAt:            now,
			RecordedBy:        recordedBy,
			CreatedAt:         now,
		}
		if err := paymentRepo.Create(reversal); err != nil {
			return err
		}
		paid, err := paymentRepo.SumByChargeID(chargeID)
		if err != nil {
			return err
		}
		charge.AmountPaid = paid
		charge.RecomputeStatus(now)
		charge.UpdatedAt = now
		return chargeRepo.Update(charge)
	})
	if err != nil {
		return nil, err
	}

	return &dto.RecordPaymentResponse{
		Charge:  toChargeResponse(charge),
		Payment: toPaymentResponse(reversal),
	}, nil
}

// ListPayments devuelve los pagos de un cargo ordenados por paid_at descendente.
func (uc *RecordPaymentUseCase) ListPayments(ctx context.Context, chargeID string) ([]dto.PaymentResponse, error) {
	charge, err := uc.chargeRepo.GetByID(chargeID)
	if err != nil {
		return nil, err
	}
	if charge == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.paymentRepo.ListByChargeID(chargeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func toChargeResponse(c *entity.Charge) dto.ChargeResponse {
	return dto.ChargeResponse{
		ID:         c.ID,
		SchoolID:   c.SchoolID,
		StudentID:  c.StudentID,
		Category:   c.Category,
		Concept:    c.Concept,
		Amount:     c.Amount,
		AmountPaid: c.AmountPaid,
		Status:     c.Status,
		DueDate:    c.DueDate,
	}
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                p.ID,
		ChargeID:          p.ChargeID,
		Amount:            p.Amount,
		Method:            p.Method,
		Reference:         p.Reference,
		ReversesPaymentID: p.ReversesPaymentID,
		PaidAt:            p.PaidAt,
		RecordedBy:        p.RecordedBy,
	}
}
