package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/pkg/money"
)

// Nombre del tramo de respaldo cuando ningún SetupFeeTier cubre la cantidad
// de estudiantes: tarifa de instalación cero, negociación comercial directa.
const EnterpriseTierName = "Enterprise"

// CatalogSnapshot es una foto inmutable del catálogo de planes y tramos de
// instalación, cargada explícitamente y pasada al cálculo de cotizaciones para
// que estas sean reproducibles sin un almacén vivo.
type CatalogSnapshot struct {
	Plans    map[string]*entity.SubscriptionPlan // clave: PlanType
	Tiers    []*entity.SetupFeeTier
	LoadedAt time.Time
}

// RevenueSplit reparte un total entre plataforma y colegio.
type RevenueSplit struct {
	Total    decimal.Decimal
	IASchool decimal.Decimal
	School   decimal.Decimal
}

// Quote es el resultado de una cotización.
type Quote struct {
	PlanType          string
	EstimatedStudents int
	PricePerStudent   decimal.Decimal
	SetupFee          decimal.Decimal
	SetupTierName     string
	Monthly           RevenueSplit
	Annual            RevenueSplit
}

// split reparte el total según las participaciones del plan. No se redondea
// aquí: el redondeo a unidad menor ocurre solo en la presentación.
func split(total decimal.Decimal, plan *entity.SubscriptionPlan) RevenueSplit {
	return RevenueSplit{
		Total:    total,
		IASchool: money.SplitByShare(total, plan.IASchoolShare),
		School:   money.SplitByShare(total, plan.SchoolShare),
	}
}

// CalculateQuote calcula una cotización a partir de una foto del catálogo.
//
//  1. Resuelve el plan por tipo (ErrPlanNotFound si no existe).
//  2. Resuelve el tramo de instalación: tramos ordenados por MinStudents
//     descendente, primer tramo que contenga la cantidad; sin coincidencia se
//     usa el respaldo Enterprise con tarifa cero (no es un error).
//  3. pricePerStudent = customPricePerStudent si viene, si no el del plan.
//  4. monthlyTotal = pricePerStudent * estimatedStudents.
//  5. annualTotal = monthlyTotal * (12 - annualDiscountMonths): los meses de
//     descuento anual van incluidos en el multiplicador de 12 unidades.
//  6. Cada total se reparte por IASchoolShare/SchoolShare.
func CalculateQuote(catalog *CatalogSnapshot, estimatedStudents int, planType string, customPricePerStudent *decimal.Decimal) (*Quote, error) {
	if estimatedStudents <= 0 {
		return nil, domain.ErrInvalidInput
	}
	plan, ok := catalog.Plans[planType]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}

	setupFee := decimal.Zero
	tierName := EnterpriseTierName
	tiers := make([]*entity.SetupFeeTier, len(catalog.Tiers))
	copy(tiers, catalog.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinStudents > tiers[j].MinStudents
	})
	for _, t := range tiers {
		if t.Contains(estimatedStudents) {
			setupFee = t.Fee
			tierName = t.Name
			break
		}
	}

	pricePerStudent := plan.PricePerStudent
	if customPricePerStudent != nil {
		pricePerStudent = *customPricePerStudent
	}

	monthlyTotal := pricePerStudent.Mul(decimal.NewFromInt(int64(estimatedStudents)))
	annualMonths := decimal.NewFromInt(int64(12 - plan.AnnualDiscountMonths))
	annualTotal := monthlyTotal.Mul(annualMonths)

	return &Quote{
		PlanType:          plan.PlanType,
		EstimatedStudents: estimatedStudents,
		PricePerStudent:   pricePerStudent,
		SetupFee:          setupFee,
		SetupTierName:     tierName,
		Monthly:           split(monthlyTotal, plan),
		Annual:            split(annualTotal, plan),
	}, nil
}

// ValidateTiers verifica que los tramos no se superpongan entre sí.
func ValidateTiers(tiers []*entity.SetupFeeTier) error {
	for i := range tiers {
		for j := i + 1; j < len(tiers); j++ {
			if tiers[i].Overlaps(tiers[j]) {
				return domain.ErrTierOverlap
			}
		}
	}
	return nil
}
