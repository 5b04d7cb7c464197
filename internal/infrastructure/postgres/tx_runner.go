package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/colegia/cobranza-api/internal/application/billing"
	appsub "github.com/colegia/cobranza-api/internal/application/subscription"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de la aplicación.
var _ billing.LedgerTxRunner = (*TxRunner)(nil)
var _ billing.ScholarshipTxRunner = (*TxRunner)(nil)
var _ appsub.SubscriptionTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger inicia una transacción con los repos del libro mayor atados a la tx
// y hace Commit o Rollback. Pago y recálculo del cargo quedan juntos o nada.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	chargeRepo repository.ChargeRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewChargeRepository(tx), NewPaymentRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunScholarship inicia una transacción con los repos de becas atados a la tx
// (conteo de cupos + inserciones del lote bajo la misma tx).
func (r *TxRunner) RunScholarship(ctx context.Context, fn func(
	scholarshipRepo repository.ScholarshipRepository,
	assignmentRepo repository.StudentScholarshipRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewScholarshipRepository(tx), NewStudentScholarshipRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSubscription inicia una transacción con los repos de suscripciones B2B
// atados a la tx (una transición por transacción, nunca a medias).
func (r *TxRunner) RunSubscription(ctx context.Context, fn func(
	subRepo repository.SchoolSubscriptionRepository,
	b2bRepo repository.B2BPaymentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewSchoolSubscriptionRepository(tx), NewB2BPaymentRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
