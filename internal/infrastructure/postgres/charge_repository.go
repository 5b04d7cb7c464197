package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

var _ repository.ChargeRepository = (*ChargeRepo)(nil)

// ChargeRepo implementación de ChargeRepository (usable con pool o tx).
type ChargeRepo struct {
	q Querier
}

// NewChargeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewChargeRepository(q Querier) *ChargeRepo {
	return &ChargeRepo{q: q}
}

const chargeColumns = `id, school_id, student_id, category, concept, amount, amount_paid, status, due_date, created_at, updated_at`

// Create persiste un cargo.
func (r *ChargeRepo) Create(charge *entity.Charge) error {
	if charge.ID == "" {
		charge.ID = uuid.New().String()
	}
	query := `
		INSERT INTO charges (` + chargeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		charge.ID, charge.SchoolID, charge.StudentID, charge.Category, nullIfEmpty(charge.Concept),
		charge.Amount, charge.AmountPaid, charge.Status, charge.DueDate,
		charge.CreatedAt, charge.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("charge already exists: %w", err)
		}
		return fmt.Errorf("insert charge: %w", err)
	}
	return nil
}

// GetByID obtiene un cargo por ID (nil si no existe).
func (r *ChargeRepo) GetByID(id string) (*entity.Charge, error) {
	return r.get(id, false)
}

// GetByIDForUpdate obtiene el cargo bloqueando la fila (FOR UPDATE).
// Serializa registros de pago concurrentes sobre el mismo cargo.
func (r *ChargeRepo) GetByIDForUpdate(id string) (*entity.Charge, error) {
	return r.get(id, true)
}

func (r *ChargeRepo) get(id string, forUpdate bool) (*entity.Charge, error) {
	query := `SELECT ` + chargeColumns + ` FROM charges WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var c entity.Charge
	var concept *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.SchoolID, &c.StudentID, &c.Category, &concept,
		&c.Amount, &c.AmountPaid, &c.Status, &c.DueDate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get charge: %w", err)
	}
	c.Concept = derefStr(concept)
	return &c, nil
}

// Update persiste amount_paid y status recalculados.
func (r *ChargeRepo) Update(charge *entity.Charge) error {
	query := `
		UPDATE charges
		SET amount_paid = $2,
		    status      = $3,
		    updated_at  = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		charge.ID, charge.AmountPaid, charge.Status, charge.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update charge: %w", err)
	}
	return nil
}

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (append-only, usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, charge_id, amount, method, reference, reverses_payment_id, paid_at, recorded_by, created_at`

// Create inserta un pago. Los pagos nunca se actualizan ni se borran.
func (r *PaymentRepo) Create(payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.ChargeID, payment.Amount, payment.Method,
		nullIfEmpty(payment.Reference), nullIfEmpty(payment.ReversesPaymentID),
		payment.PaidAt, payment.RecordedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID (nil si no existe).
func (r *PaymentRepo) GetByID(id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	var p entity.Payment
	var reference, reverses *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.ChargeID, &p.Amount, &p.Method, &reference, &reverses,
		&p.PaidAt, &p.RecordedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	p.Reference = derefStr(reference)
	p.ReversesPaymentID = derefStr(reverses)
	return &p, nil
}

// ListByChargeID devuelve los pagos del cargo ordenados por paid_at descendente.
func (r *PaymentRepo) ListByChargeID(chargeID string) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE charge_id = $1 ORDER BY paid_at DESC, created_at DESC`
	rows, err := r.q.Query(context.Background(), query, chargeID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		var reference, reverses *string
		if err := rows.Scan(
			&p.ID, &p.ChargeID, &p.Amount, &p.Method, &reference, &reverses,
			&p.PaidAt, &p.RecordedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Reference = derefStr(reference)
		p.ReversesPaymentID = derefStr(reverses)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// SumByChargeID suma todos los pagos del cargo (las reversas, negativas, restan).
func (r *PaymentRepo) SumByChargeID(chargeID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE charge_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, chargeID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

// HasReversal indica si ya existe un ajuste que reversa el pago dado.
func (r *PaymentRepo) HasReversal(paymentID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM payments WHERE reverses_payment_id = $1)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, paymentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reversal: %w", err)
	}
	return exists, nil
}
