package repository

import "github.com/colegia/cobranza-api/internal/domain/entity"

// SubscriptionPlanRepository define el puerto del catálogo de planes B2B.
// Upsert es "defineOrReplace" por clave natural (plan_type): la validación
// (participaciones suman 100) ocurre en el caso de uso, antes de persistir.
type SubscriptionPlanRepository interface {
	Upsert(plan *entity.SubscriptionPlan) error
	GetByType(planType string) (*entity.SubscriptionPlan, error)
	List() ([]*entity.SubscriptionPlan, error)
}

// SetupFeeTierRepository define el puerto del catálogo de tramos de instalación.
type SetupFeeTierRepository interface {
	Upsert(tier *entity.SetupFeeTier) error
	List() ([]*entity.SetupFeeTier, error)
}
