package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegia/cobranza-api/internal/application/billing"
	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria del catálogo
// ──────────────────────────────────────────────────────────────────────────────

type fakePlanRepo struct {
	plans     map[string]*entity.SubscriptionPlan
	listCalls int
}

func (r *fakePlanRepo) Upsert(p *entity.SubscriptionPlan) error {
	cp := *p
	r.plans[p.PlanType] = &cp
	return nil
}

func (r *fakePlanRepo) GetByType(planType string) (*entity.SubscriptionPlan, error) {
	p, ok := r.plans[planType]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakePlanRepo) List() ([]*entity.SubscriptionPlan, error) {
	r.listCalls++
	out := make([]*entity.SubscriptionPlan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

type fakeTierRepo struct {
	tiers map[string]*entity.SetupFeeTier
}

func (r *fakeTierRepo) Upsert(t *entity.SetupFeeTier) error {
	cp := *t
	r.tiers[t.Name] = &cp
	return nil
}

func (r *fakeTierRepo) List() ([]*entity.SetupFeeTier, error) {
	out := make([]*entity.SetupFeeTier, 0, len(r.tiers))
	for _, t := range r.tiers {
		out = append(out, t)
	}
	return out, nil
}

func newQuoteFixture(cacheTTL time.Duration) (*billing.QuoteUseCase, *fakePlanRepo, *fakeTierRepo) {
	planRepo := &fakePlanRepo{plans: map[string]*entity.SubscriptionPlan{
		"STANDARD": {
			ID:                   "plan-1",
			PlanType:             "STANDARD",
			Name:                 "Plan Estándar",
			PricePerStudent:      dec("10"),
			IASchoolShare:        dec("30"),
			SchoolShare:          dec("70"),
			AnnualDiscountMonths: 2,
		},
	}}
	tierRepo := &fakeTierRepo{tiers: map[string]*entity.SetupFeeTier{
		"Pequeño": {ID: "t1", Name: "Pequeño", MinStudents: 1, MaxStudents: intPtr(100), Fee: dec("500")},
	}}
	return billing.NewQuoteUseCase(planRepo, tierRepo, cacheTTL), planRepo, tierRepo
}

// ──────────────────────────────────────────────────────────────────────────────
// CalculateQuote
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateQuote_RespuestaRedondeada(t *testing.T) {
	uc, planRepo, _ := newQuoteFixture(0)
	planRepo.plans["STANDARD"].IASchoolShare = dec("33.335")
	planRepo.plans["STANDARD"].SchoolShare = dec("66.665")

	resp, err := uc.CalculateQuote(context.Background(), dto.CalculateQuoteRequest{
		EstimatedStudents: 10, PlanType: "STANDARD",
	})
	require.NoError(t, err)

	// mensual = 100; 33.335% = 33.335 → 33.34 redondeado half-up
	assert.True(t, dec("100").Equal(resp.Monthly.Total))
	assert.True(t, dec("33.34").Equal(resp.Monthly.IASchool),
		"la presentación redondea half-up a centavos, fue %s", resp.Monthly.IASchool)
	assert.True(t, dec("66.67").Equal(resp.Monthly.School))
}

func TestCalculateQuote_PlanInexistente(t *testing.T) {
	uc, _, _ := newQuoteFixture(0)
	_, err := uc.CalculateQuote(context.Background(), dto.CalculateQuoteRequest{
		EstimatedStudents: 10, PlanType: "DELUXE",
	})
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

// Con caché activo el catálogo se lee una sola vez dentro del TTL.
func TestCalculateQuote_UsaElCache(t *testing.T) {
	uc, planRepo, _ := newQuoteFixture(time.Minute)

	for i := 0; i < 3; i++ {
		_, err := uc.CalculateQuote(context.Background(), dto.CalculateQuoteRequest{
			EstimatedStudents: 10, PlanType: "STANDARD",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, planRepo.listCalls, "la foto cacheada evita relecturas del catálogo")
}

// Definir un plan invalida la foto cacheada.
func TestCalculateQuote_EscrituraInvalidaElCache(t *testing.T) {
	uc, planRepo, _ := newQuoteFixture(time.Minute)

	_, err := uc.CalculateQuote(context.Background(), dto.CalculateQuoteRequest{
		EstimatedStudents: 10, PlanType: "STANDARD",
	})
	require.NoError(t, err)

	_, err = uc.DefineOrReplacePlan(context.Background(), "PREMIUM", dto.DefinePlanRequest{
		Name: "Plan Premium", PricePerStudent: dec("15"),
		IASchoolShare: dec("40"), SchoolShare: dec("60"),
	})
	require.NoError(t, err)

	resp, err := uc.CalculateQuote(context.Background(), dto.CalculateQuoteRequest{
		EstimatedStudents: 10, PlanType: "PREMIUM",
	})
	require.NoError(t, err, "el plan recién definido debe ser cotizable de inmediato")
	assert.Equal(t, "PREMIUM", resp.PlanType)
	assert.Equal(t, 2, planRepo.listCalls, "la escritura fuerza una relectura")
}

// ──────────────────────────────────────────────────────────────────────────────
// DefineOrReplacePlan
// ──────────────────────────────────────────────────────────────────────────────

func TestDefinePlan_ParticipacionesDebenSumar100(t *testing.T) {
	uc, planRepo, _ := newQuoteFixture(0)

	_, err := uc.DefineOrReplacePlan(context.Background(), "PREMIUM", dto.DefinePlanRequest{
		Name: "Plan Premium", PricePerStudent: dec("15"),
		IASchoolShare: dec("40"), SchoolShare: dec("50"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidShares)
	_, ok := planRepo.plans["PREMIUM"]
	assert.False(t, ok, "el plan inválido no se persiste")
}

func TestDefinePlan_ReemplazaPorClaveNatural(t *testing.T) {
	uc, planRepo, _ := newQuoteFixture(0)

	_, err := uc.DefineOrReplacePlan(context.Background(), "STANDARD", dto.DefinePlanRequest{
		Name: "Plan Estándar v2", PricePerStudent: dec("12"),
		IASchoolShare: dec("25"), SchoolShare: dec("75"), AnnualDiscountMonths: 1,
	})
	require.NoError(t, err)

	stored := planRepo.plans["STANDARD"]
	assert.Equal(t, "Plan Estándar v2", stored.Name)
	assert.True(t, dec("12").Equal(stored.PricePerStudent))
	assert.Equal(t, "plan-1", stored.ID, "el reemplazo conserva la identidad original")
	assert.Len(t, planRepo.plans, 1, "reemplaza, no duplica")
}

func TestDefinePlan_MesesDeDescuentoFueraDeRango(t *testing.T) {
	uc, _, _ := newQuoteFixture(0)

	_, err := uc.DefineOrReplacePlan(context.Background(), "PREMIUM", dto.DefinePlanRequest{
		Name: "X", PricePerStudent: dec("10"),
		IASchoolShare: dec("50"), SchoolShare: dec("50"), AnnualDiscountMonths: 12,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "12 meses gratis dejaría el anual en cero")
}

// ──────────────────────────────────────────────────────────────────────────────
// DefineOrReplaceTier
// ──────────────────────────────────────────────────────────────────────────────

func TestDefineTier_SuperposicionRechazada(t *testing.T) {
	uc, _, tierRepo := newQuoteFixture(0)

	_, err := uc.DefineOrReplaceTier(context.Background(), "Mediano", dto.DefineTierRequest{
		MinStudents: 50, MaxStudents: intPtr(200), Fee: dec("900"),
	})
	assert.ErrorIs(t, err, domain.ErrTierOverlap, "50-200 choca con el tramo 1-100 existente")
	_, ok := tierRepo.tiers["Mediano"]
	assert.False(t, ok)
}

// Reemplazar un tramo por su propio nombre no choca consigo mismo.
func TestDefineTier_ReemplazoNoChocaConsigoMismo(t *testing.T) {
	uc, _, tierRepo := newQuoteFixture(0)

	tier, err := uc.DefineOrReplaceTier(context.Background(), "Pequeño", dto.DefineTierRequest{
		MinStudents: 1, MaxStudents: intPtr(150), Fee: dec("600"),
	})
	require.NoError(t, err, "la versión anterior del mismo tramo no cuenta para la superposición")
	assert.Equal(t, 150, *tier.MaxStudents)
	assert.True(t, dec("600").Equal(tierRepo.tiers["Pequeño"].Fee))
}

func TestDefineTier_RangoInvalido(t *testing.T) {
	uc, _, _ := newQuoteFixture(0)

	_, err := uc.DefineOrReplaceTier(context.Background(), "Raro", dto.DefineTierRequest{
		MinStudents: 100, MaxStudents: intPtr(50), Fee: dec("900"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "max < min no es un tramo válido")
}
