package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/billing"
	"github.com/colegia/cobranza-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func intPtr(n int) *int { return &n }

func testCatalog() *billing.CatalogSnapshot {
	return &billing.CatalogSnapshot{
		Plans: map[string]*entity.SubscriptionPlan{
			"STANDARD": {
				ID:                   "plan-1",
				PlanType:             "STANDARD",
				Name:                 "Plan Estándar",
				PricePerStudent:      dec("10"),
				IASchoolShare:        dec("30"),
				SchoolShare:          dec("70"),
				AnnualDiscountMonths: 2,
			},
		},
		Tiers: []*entity.SetupFeeTier{
			{ID: "t1", Name: "Pequeño", MinStudents: 1, MaxStudents: intPtr(100), Fee: dec("500")},
			{ID: "t2", Name: "Mediano", MinStudents: 101, MaxStudents: intPtr(500), Fee: dec("1200")},
			{ID: "t3", Name: "Grande", MinStudents: 501, MaxStudents: intPtr(2000), Fee: dec("3000")},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CalculateQuote
// ──────────────────────────────────────────────────────────────────────────────

// Caso completo: 200 estudiantes en STANDARD.
// monthly = 10*200 = 2000; annual = 2000*(12-2) = 20000; split 30/70.
func TestCalculateQuote_CasoCompleto(t *testing.T) {
	q, err := billing.CalculateQuote(testCatalog(), 200, "STANDARD", nil)
	require.NoError(t, err)

	assert.Equal(t, "STANDARD", q.PlanType)
	assert.Equal(t, 200, q.EstimatedStudents)
	assert.Equal(t, "Mediano", q.SetupTierName, "200 estudiantes caen en el tramo 101-500")
	assert.True(t, dec("1200").Equal(q.SetupFee))

	assert.True(t, dec("2000").Equal(q.Monthly.Total), "mensual = 10 * 200")
	assert.True(t, dec("600").Equal(q.Monthly.IASchool), "30%% de 2000")
	assert.True(t, dec("1400").Equal(q.Monthly.School), "70%% de 2000")

	assert.True(t, dec("20000").Equal(q.Annual.Total), "anual = 2000 * (12-2)")
	assert.True(t, dec("6000").Equal(q.Annual.IASchool))
	assert.True(t, dec("14000").Equal(q.Annual.School))
}

// Las participaciones del split siempre suman el total (sin pérdida por redondeo).
func TestCalculateQuote_SplitSumaElTotal(t *testing.T) {
	catalog := testCatalog()
	catalog.Plans["STANDARD"].IASchoolShare = dec("33.33")
	catalog.Plans["STANDARD"].SchoolShare = dec("66.67")

	q, err := billing.CalculateQuote(catalog, 7, "STANDARD", nil)
	require.NoError(t, err)

	sum := q.Monthly.IASchool.Add(q.Monthly.School)
	assert.True(t, q.Monthly.Total.Equal(sum),
		"IASchool + School debe ser exactamente el total: %s != %s", sum, q.Monthly.Total)
}

// Sin tramo que cubra la cantidad: respaldo Enterprise con tarifa cero, no error.
func TestCalculateQuote_RespaldoEnterprise(t *testing.T) {
	q, err := billing.CalculateQuote(testCatalog(), 5000, "STANDARD", nil)
	require.NoError(t, err, "quedar fuera de todos los tramos no es un error")

	assert.Equal(t, billing.EnterpriseTierName, q.SetupTierName)
	assert.True(t, decimal.Zero.Equal(q.SetupFee), "el respaldo Enterprise tiene tarifa cero")
}

// Un tramo sin tope superior captura cualquier cantidad por encima del mínimo.
func TestCalculateQuote_TramoSinTope(t *testing.T) {
	catalog := testCatalog()
	catalog.Tiers = append(catalog.Tiers, &entity.SetupFeeTier{
		ID: "t4", Name: "Corporativo", MinStudents: 2001, MaxStudents: nil, Fee: dec("8000"),
	})

	q, err := billing.CalculateQuote(catalog, 5000, "STANDARD", nil)
	require.NoError(t, err)
	assert.Equal(t, "Corporativo", q.SetupTierName)
	assert.True(t, dec("8000").Equal(q.SetupFee))
}

// El precio por estudiante negociado sobreescribe el del plan.
func TestCalculateQuote_PrecioPersonalizado(t *testing.T) {
	custom := dec("8.50")
	q, err := billing.CalculateQuote(testCatalog(), 100, "STANDARD", &custom)
	require.NoError(t, err)

	assert.True(t, dec("8.50").Equal(q.PricePerStudent))
	assert.True(t, dec("850").Equal(q.Monthly.Total), "mensual = 8.50 * 100")
}

func TestCalculateQuote_PlanInexistente(t *testing.T) {
	_, err := billing.CalculateQuote(testCatalog(), 100, "DELUXE", nil)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestCalculateQuote_EstudiantesNoPositivos(t *testing.T) {
	_, err := billing.CalculateQuote(testCatalog(), 0, "STANDARD", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = billing.CalculateQuote(testCatalog(), -3, "STANDARD", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateTiers
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateTiers_SinSuperposicion(t *testing.T) {
	assert.NoError(t, billing.ValidateTiers(testCatalog().Tiers))
}

func TestValidateTiers_Superpuestos(t *testing.T) {
	tiers := []*entity.SetupFeeTier{
		{ID: "t1", Name: "A", MinStudents: 1, MaxStudents: intPtr(100), Fee: dec("500")},
		{ID: "t2", Name: "B", MinStudents: 50, MaxStudents: intPtr(200), Fee: dec("900")},
	}
	assert.ErrorIs(t, billing.ValidateTiers(tiers), domain.ErrTierOverlap)
}

func TestValidateTiers_SinTopeChocaConTodoLoSuperior(t *testing.T) {
	tiers := []*entity.SetupFeeTier{
		{ID: "t1", Name: "A", MinStudents: 1, MaxStudents: nil, Fee: dec("500")},
		{ID: "t2", Name: "B", MinStudents: 1000, MaxStudents: intPtr(2000), Fee: dec("900")},
	}
	assert.ErrorIs(t, billing.ValidateTiers(tiers), domain.ErrTierOverlap,
		"un tramo sin tope se superpone con cualquier tramo por encima de su mínimo")
}
