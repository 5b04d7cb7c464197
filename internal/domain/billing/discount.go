package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/pkg/money"
)

// ScholarshipGrant empareja una asignación con su beca para el cálculo de descuento.
type ScholarshipGrant struct {
	Scholarship *entity.Scholarship
	Assignment  *entity.StudentScholarship
}

// effectiveValue devuelve el valor de descuento a aplicar: el CustomDiscountValue
// de la asignación si existe, si no el DiscountValue de la beca. El tipo de
// descuento siempre es el de la beca.
func (g ScholarshipGrant) effectiveValue() decimal.Decimal {
	if g.Assignment != nil && g.Assignment.CustomDiscountValue != nil {
		return *g.Assignment.CustomDiscountValue
	}
	return g.Scholarship.DiscountValue
}

// ComputeDiscount calcula el descuento de una beca sobre un monto base.
// El resultado queda siempre en [0, baseAmount]:
//   - PERCENTAGE: baseAmount * valor/100 redondeado half-up a la unidad menor.
//     Un porcentaje mayor a 100 (posible vía CustomDiscountValue) se limita al base.
//   - FIXED_AMOUNT: min(valor, baseAmount).
func ComputeDiscount(grant ScholarshipGrant, baseAmount decimal.Decimal) decimal.Decimal {
	if baseAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	value := grant.effectiveValue()
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch grant.Scholarship.DiscountType {
	case entity.DiscountTypePercentage:
		discount = money.RoundMinorUnit(money.Percent(baseAmount, value))
	case entity.DiscountTypeFixedAmount:
		discount = money.Min(value, baseAmount)
	default:
		return decimal.Zero
	}
	return money.Clamp(discount, decimal.Zero, baseAmount)
}

// StackDiscounts aplica varias becas activas sobre un mismo cargo.
//
// Política de apilamiento (decisión explícita, ver DESIGN.md): las becas se
// aplican en orden ascendente de ValidFrom (la asignada primero, primero) y
// cada descuento se calcula contra el saldo RESTANTE tras los descuentos
// anteriores, no contra el monto original. El acumulado nunca deja el cargo
// por debajo de cero. Desempate determinista por ID de asignación.
func StackDiscounts(grants []ScholarshipGrant, baseAmount decimal.Decimal, now time.Time) decimal.Decimal {
	applicable := make([]ScholarshipGrant, 0, len(grants))
	for _, g := range grants {
		if g.Scholarship == nil || g.Assignment == nil {
			continue
		}
		if g.Assignment.ActiveAt(now) {
			applicable = append(applicable, g)
		}
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		a, b := applicable[i].Assignment, applicable[j].Assignment
		if !a.ValidFrom.Equal(b.ValidFrom) {
			return a.ValidFrom.Before(b.ValidFrom)
		}
		return a.ID < b.ID
	})

	remaining := baseAmount
	total := decimal.Zero
	for _, g := range applicable {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		d := ComputeDiscount(g, remaining)
		total = total.Add(d)
		remaining = remaining.Sub(d)
	}
	return total
}
