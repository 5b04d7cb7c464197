package billing

import (
	"context"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

// LedgerTxRunner ejecuta una función dentro de una transacción con los repos
// del libro mayor atados a la tx. Pago y recálculo del cargo se persisten
// juntos o no se persiste nada.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		chargeRepo repository.ChargeRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}

// ScholarshipTxRunner ejecuta una función dentro de una transacción con los
// repos de becas atados a la tx (asignación por lotes con control de cupos).
type ScholarshipTxRunner interface {
	RunScholarship(ctx context.Context, fn func(
		scholarshipRepo repository.ScholarshipRepository,
		assignmentRepo repository.StudentScholarshipRepository,
	) error) error
}

// Notifier es el colaborador de notificaciones. Se invoca después del commit,
// best-effort: sus fallas se registran y nunca revierten la escritura financiera.
type Notifier interface {
	NotifyPaymentRecorded(ctx context.Context, charge *entity.Charge, payment *entity.Payment) error
}

// Políticas de sobrepago configurables (decisión explícita, no se adivina):
//   - accept: el exceso se acepta, el cargo queda PAGADO, no se genera crédito.
//   - reject: el pago que excede el saldo se rechaza con ErrOverpaymentRejected.
const (
	OverpaymentAccept = "accept"
	OverpaymentReject = "reject"
)
