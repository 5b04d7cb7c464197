package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan es una entrada del catálogo de planes B2B.
// IASchoolShare + SchoolShare deben sumar 100; se valida al definir el plan,
// nunca al cotizar.
type SubscriptionPlan struct {
	ID                   string
	PlanType             string // BASIC, STANDARD, PREMIUM, ...
	Name                 string
	PricePerStudent      decimal.Decimal
	IASchoolShare        decimal.Decimal // % para la plataforma
	SchoolShare          decimal.Decimal // % para el colegio
	AnnualDiscountMonths int             // meses gratis en pago anual
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SharesValid verifica que la repartición sume exactamente 100.
func (p *SubscriptionPlan) SharesValid() bool {
	return p.IASchoolShare.Add(p.SchoolShare).Equal(decimal.NewFromInt(100))
}

// SetupFeeTier es un escalón de la función por tramos estudiantes → tarifa de instalación.
// MaxStudents nil significa tramo sin tope superior.
type SetupFeeTier struct {
	ID          string
	Name        string
	MinStudents int
	MaxStudents *int
	Fee         decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contains indica si la cantidad de estudiantes cae dentro del tramo.
func (t *SetupFeeTier) Contains(students int) bool {
	if students < t.MinStudents {
		return false
	}
	return t.MaxStudents == nil || students <= *t.MaxStudents
}

// Overlaps indica si dos tramos se superponen.
func (t *SetupFeeTier) Overlaps(other *SetupFeeTier) bool {
	tMax := t.MaxStudents
	oMax := other.MaxStudents
	if tMax != nil && *tMax < other.MinStudents {
		return false
	}
	if oMax != nil && *oMax < t.MinStudents {
		return false
	}
	return true
}
