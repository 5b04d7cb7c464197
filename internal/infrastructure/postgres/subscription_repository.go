package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

var _ repository.SchoolSubscriptionRepository = (*SchoolSubscriptionRepo)(nil)

// SchoolSubscriptionRepo implementación de SchoolSubscriptionRepository.
type SchoolSubscriptionRepo struct {
	q Querier
}

// NewSchoolSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSchoolSubscriptionRepository(q Querier) *SchoolSubscriptionRepo {
	return &SchoolSubscriptionRepo{q: q}
}

const subscriptionColumns = `id, school_id, plan_type, status, b2b_payment_status, b2b_grace_period_days, b2b_delinquent_since, b2b_suspended_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (*entity.SchoolSubscription, error) {
	var s entity.SchoolSubscription
	err := row.Scan(
		&s.ID, &s.SchoolID, &s.PlanType, &s.Status, &s.B2BPaymentStatus,
		&s.B2BGracePeriodDays, &s.B2BDelinquentSince, &s.B2BSuspendedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene una suscripción por ID (nil si no existe).
func (r *SchoolSubscriptionRepo) GetByID(id string) (*entity.SchoolSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM school_subscriptions WHERE id = $1`
	s, err := scanSubscription(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return s, nil
}

// ListProcessablePage devuelve un lote de suscripciones elegibles para la
// corrida de morosidad, ordenadas por id y empezando después de afterID.
func (r *SchoolSubscriptionRepo) ListProcessablePage(afterID string, limit int) ([]*entity.SchoolSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + ` FROM school_subscriptions
		WHERE status = $1
		  AND b2b_payment_status NOT IN ($2, $3)
		  AND id > $4
		ORDER BY id ASC
		LIMIT $5`
	rows, err := r.q.Query(context.Background(), query,
		entity.SubscriptionActive, entity.B2BPaymentSuspended, entity.B2BPaymentCancelled,
		afterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list processable subscriptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.SchoolSubscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update persiste el estado de la suscripción (transición de morosidad o recuperación).
func (r *SchoolSubscriptionRepo) Update(sub *entity.SchoolSubscription) error {
	query := `
		UPDATE school_subscriptions
		SET status               = $2,
		    b2b_payment_status   = $3,
		    b2b_delinquent_since = $4,
		    b2b_suspended_at     = $5,
		    updated_at           = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sub.ID, sub.Status, sub.B2BPaymentStatus,
		sub.B2BDelinquentSince, sub.B2BSuspendedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

var _ repository.B2BPaymentRepository = (*B2BPaymentRepo)(nil)

// B2BPaymentRepo implementación de B2BPaymentRepository.
type B2BPaymentRepo struct {
	q Querier
}

// NewB2BPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewB2BPaymentRepository(q Querier) *B2BPaymentRepo {
	return &B2BPaymentRepo{q: q}
}

const b2bPaymentColumns = `id, subscription_id, period_label, amount, due_date, status, verified_at, verified_by_id, notes, created_at, updated_at`

func scanB2BPayment(row pgx.Row) (*entity.SchoolB2BPayment, error) {
	var p entity.SchoolB2BPayment
	var verifiedBy, notes *string
	err := row.Scan(
		&p.ID, &p.SubscriptionID, &p.PeriodLabel, &p.Amount, &p.DueDate,
		&p.Status, &p.VerifiedAt, &verifiedBy, &notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.VerifiedByID = derefStr(verifiedBy)
	p.Notes = derefStr(notes)
	return &p, nil
}

// GetByID obtiene una cuota B2B por ID (nil si no existe).
func (r *B2BPaymentRepo) GetByID(id string) (*entity.SchoolB2BPayment, error) {
	query := `SELECT ` + b2bPaymentColumns + ` FROM school_b2b_payments WHERE id = $1`
	p, err := scanB2BPayment(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get b2b payment: %w", err)
	}
	return p, nil
}

// ListOutstandingBySubscription devuelve las cuotas PENDING/PARTIAL/OVERDUE
// ordenadas por due_date ascendente (la más antigua primero).
func (r *B2BPaymentRepo) ListOutstandingBySubscription(subscriptionID string) ([]*entity.SchoolB2BPayment, error) {
	query := `
		SELECT ` + b2bPaymentColumns + ` FROM school_b2b_payments
		WHERE subscription_id = $1
		  AND status IN ($2, $3, $4)
		ORDER BY due_date ASC`
	rows, err := r.q.Query(context.Background(), query, subscriptionID,
		entity.B2BInvoicePending, entity.B2BInvoicePartial, entity.B2BInvoiceOverdue,
	)
	if err != nil {
		return nil, fmt.Errorf("list outstanding b2b payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.SchoolB2BPayment
	for rows.Next() {
		p, err := scanB2BPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan b2b payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update persiste la cuota (verificación).
func (r *B2BPaymentRepo) Update(payment *entity.SchoolB2BPayment) error {
	query := `
		UPDATE school_b2b_payments
		SET status         = $2,
		    verified_at    = $3,
		    verified_by_id = $4,
		    notes          = COALESCE($5, notes),
		    updated_at     = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.Status, payment.VerifiedAt,
		nullIfEmpty(payment.VerifiedByID), nullIfEmpty(payment.Notes), payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update b2b payment: %w", err)
	}
	return nil
}

// MarkOverdue pasa a OVERDUE las cuotas indicadas (al suspender la suscripción).
func (r *B2BPaymentRepo) MarkOverdue(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE school_b2b_payments SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	_, err := r.q.Exec(context.Background(), query, entity.B2BInvoiceOverdue, ids)
	if err != nil {
		return fmt.Errorf("mark b2b payments overdue: %w", err)
	}
	return nil
}

var _ repository.DelinquencyCursorRepository = (*DelinquencyCursorRepo)(nil)

// DelinquencyCursorRepo persiste el cursor de la corrida de morosidad en una
// tabla de una sola fila (clave fija).
type DelinquencyCursorRepo struct {
	q Querier
}

// NewDelinquencyCursorRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDelinquencyCursorRepository(q Querier) *DelinquencyCursorRepo {
	return &DelinquencyCursorRepo{q: q}
}

const delinquencyCursorKey = "delinquency"

// Get devuelve el último ID procesado ("" si no hay cursor).
func (r *DelinquencyCursorRepo) Get() (string, error) {
	const query = `SELECT last_subscription_id FROM batch_cursors WHERE name = $1`
	var last string
	err := r.q.QueryRow(context.Background(), query, delinquencyCursorKey).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get cursor: %w", err)
	}
	return last, nil
}

// Save guarda el progreso de la corrida.
func (r *DelinquencyCursorRepo) Save(lastSubscriptionID string) error {
	const query = `
		INSERT INTO batch_cursors (name, last_subscription_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
		    last_subscription_id = EXCLUDED.last_subscription_id,
		    updated_at           = NOW()`
	if _, err := r.q.Exec(context.Background(), query, delinquencyCursorKey, lastSubscriptionID); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// Clear elimina el cursor al completar la corrida.
func (r *DelinquencyCursorRepo) Clear() error {
	const query = `DELETE FROM batch_cursors WHERE name = $1`
	if _, err := r.q.Exec(context.Background(), query, delinquencyCursorKey); err != nil {
		return fmt.Errorf("clear cursor: %w", err)
	}
	return nil
}
