package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de descuento de una beca.
const (
	DiscountTypePercentage  = "PERCENTAGE"
	DiscountTypeFixedAmount = "FIXED_AMOUNT"
)

// Estados de una asignación de beca.
const (
	StudentScholarshipActiva     = "ACTIVA"
	StudentScholarshipSuspendida = "SUSPENDIDA"
	StudentScholarshipExpirada   = "EXPIRADA"
)

// Scholarship es una política de descuento con alcance de colegio.
type Scholarship struct {
	ID              string
	SchoolID        string
	Name            string
	DiscountType    string
	DiscountValue   decimal.Decimal
	ApplyTo         string // categoría de cargo que afecta (TUITION, FEE, ...)
	MinGPA          *decimal.Decimal
	MaxBeneficiaries *int // nil = sin límite de cupos
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StudentScholarship asigna una beca a un estudiante.
// CustomDiscountValue sobreescribe DiscountValue de la beca pero conserva su tipo.
type StudentScholarship struct {
	ID                  string
	ScholarshipID       string
	StudentID           string
	Status              string
	CustomDiscountValue *decimal.Decimal
	ValidFrom           time.Time
	ValidUntil          *time.Time
	CreatedAt           time.Time
}

// ActiveAt indica si la asignación está vigente en el instante dado.
func (ss *StudentScholarship) ActiveAt(now time.Time) bool {
	if ss.Status != StudentScholarshipActiva {
		return false
	}
	if now.Before(ss.ValidFrom) {
		return false
	}
	if ss.ValidUntil != nil && now.After(*ss.ValidUntil) {
		return false
	}
	return true
}
