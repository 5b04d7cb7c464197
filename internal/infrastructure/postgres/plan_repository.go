package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

var _ repository.SubscriptionPlanRepository = (*SubscriptionPlanRepo)(nil)

// SubscriptionPlanRepo implementación del catálogo de planes (usable con pool o tx).
type SubscriptionPlanRepo struct {
	q Querier
}

// NewSubscriptionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionPlanRepository(q Querier) *SubscriptionPlanRepo {
	return &SubscriptionPlanRepo{q: q}
}

const planColumns = `id, plan_type, name, price_per_student, ia_school_share, school_share, annual_discount_months, created_at, updated_at`

// Upsert crea o reemplaza el plan por su clave natural (plan_type).
// La validación de negocio ya ocurrió en el caso de uso.
func (r *SubscriptionPlanRepo) Upsert(plan *entity.SubscriptionPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	query := `
		INSERT INTO subscription_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
		ON CONFLICT (plan_type) DO UPDATE SET
		    name                   = EXCLUDED.name,
		    price_per_student      = EXCLUDED.price_per_student,
		    ia_school_share        = EXCLUDED.ia_school_share,
		    school_share           = EXCLUDED.school_share,
		    annual_discount_months = EXCLUDED.annual_discount_months,
		    updated_at             = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		plan.ID, plan.PlanType, plan.Name, plan.PricePerStudent,
		plan.IASchoolShare, plan.SchoolShare, plan.AnnualDiscountMonths, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func scanPlan(row pgx.Row) (*entity.SubscriptionPlan, error) {
	var p entity.SubscriptionPlan
	err := row.Scan(
		&p.ID, &p.PlanType, &p.Name, &p.PricePerStudent,
		&p.IASchoolShare, &p.SchoolShare, &p.AnnualDiscountMonths,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByType obtiene un plan por tipo (nil si no existe).
func (r *SubscriptionPlanRepo) GetByType(planType string) (*entity.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE plan_type = $1`
	p, err := scanPlan(r.q.QueryRow(context.Background(), query, planType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// List devuelve todos los planes del catálogo.
func (r *SubscriptionPlanRepo) List() ([]*entity.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY plan_type`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var list []*entity.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

var _ repository.SetupFeeTierRepository = (*SetupFeeTierRepo)(nil)

// SetupFeeTierRepo implementación del catálogo de tramos de instalación.
type SetupFeeTierRepo struct {
	q Querier
}

// NewSetupFeeTierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSetupFeeTierRepository(q Querier) *SetupFeeTierRepo {
	return &SetupFeeTierRepo{q: q}
}

const tierColumns = `id, name, min_students, max_students, fee, created_at, updated_at`

// Upsert crea o reemplaza el tramo por nombre.
func (r *SetupFeeTierRepo) Upsert(tier *entity.SetupFeeTier) error {
	if tier.ID == "" {
		tier.ID = uuid.New().String()
	}
	query := `
		INSERT INTO setup_fee_tiers (` + tierColumns + `)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		ON CONFLICT (name) DO UPDATE SET
		    min_students = EXCLUDED.min_students,
		    max_students = EXCLUDED.max_students,
		    fee          = EXCLUDED.fee,
		    updated_at   = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		tier.ID, tier.Name, tier.MinStudents, tier.MaxStudents, tier.Fee, tier.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert tier: %w", err)
	}
	return nil
}

// List devuelve todos los tramos.
func (r *SetupFeeTierRepo) List() ([]*entity.SetupFeeTier, error) {
	query := `SELECT ` + tierColumns + ` FROM setup_fee_tiers ORDER BY min_students`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()
	var list []*entity.SetupFeeTier
	for rows.Next() {
		var t entity.SetupFeeTier
		if err := rows.Scan(&t.ID, &t.Name, &t.MinStudents, &t.MaxStudents, &t.Fee, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
