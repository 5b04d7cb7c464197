package subscription_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/subscription"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const defaultGraceDays = 10

func activeSub(graceDays int) *entity.SchoolSubscription {
	return &entity.SchoolSubscription{
		ID:                 "sub-1",
		SchoolID:           "school-1",
		PlanType:           "STANDARD",
		Status:             entity.SubscriptionActive,
		B2BPaymentStatus:   entity.B2BPaymentCurrent,
		B2BGracePeriodDays: graceDays,
	}
}

func duePayment(id string, daysAgo int) *entity.SchoolB2BPayment {
	return &entity.SchoolB2BPayment{
		ID:             id,
		SubscriptionID: "sub-1",
		Amount:         decimal.NewFromInt(1000),
		DueDate:        testNow.AddDate(0, 0, -daysAgo),
		Status:         entity.B2BInvoicePending,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Umbrales de la máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

// 5 días de atraso con gracia de 10: entra a GRACE_PERIOD y se estampa la marca.
func TestEvaluate_DentroDeGracia(t *testing.T) {
	sub := activeSub(10)
	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 5)}, defaultGraceDays, testNow)

	require.True(t, tr.Changed)
	assert.Equal(t, entity.B2BPaymentGracePeriod, tr.B2BPaymentStatus)
	assert.Equal(t, entity.SubscriptionActive, tr.Status, "el estado grueso no cambia en gracia")
	assert.True(t, tr.StampDelinquentSince, "primera vez en mora: debe estamparse la marca")
	assert.Nil(t, tr.SuspendedAt)
	assert.Empty(t, tr.MarkOverdueIDs)
}

// 15 días de atraso con gracia de 10: pasa a OVERDUE.
func TestEvaluate_GraciaVencida(t *testing.T) {
	sub := activeSub(10)
	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 15)}, defaultGraceDays, testNow)

	require.True(t, tr.Changed)
	assert.Equal(t, entity.B2BPaymentOverdue, tr.B2BPaymentStatus)
	assert.Nil(t, tr.SuspendedAt)
}

// 45 días de atraso con gracia de 10 (45 > 10+30): SUSPENDED, se estampa
// B2BSuspendedAt y las cuotas vencidas pasan a OVERDUE.
func TestEvaluate_Suspension(t *testing.T) {
	sub := activeSub(10)
	payments := []*entity.SchoolB2BPayment{duePayment("p1", 45), duePayment("p2", 20)}
	tr := subscription.Evaluate(sub, payments, defaultGraceDays, testNow)

	require.True(t, tr.Changed)
	assert.Equal(t, entity.B2BPaymentSuspended, tr.B2BPaymentStatus)
	assert.Equal(t, entity.SubscriptionSuspended, tr.Status)
	require.NotNil(t, tr.SuspendedAt)
	assert.True(t, tr.SuspendedAt.Equal(testNow))
	assert.ElementsMatch(t, []string{"p1", "p2"}, tr.MarkOverdueIDs,
		"todas las cuotas vencidas deben marcarse OVERDUE al suspender")
}

// El umbral se mide desde la cuota vencida MÁS ANTIGUA.
func TestEvaluate_UsaLaCuotaMasAntigua(t *testing.T) {
	sub := activeSub(10)
	payments := []*entity.SchoolB2BPayment{duePayment("reciente", 2), duePayment("antigua", 15)}
	tr := subscription.Evaluate(sub, payments, defaultGraceDays, testNow)

	require.True(t, tr.Changed)
	assert.Equal(t, entity.B2BPaymentOverdue, tr.B2BPaymentStatus,
		"15 días de la cuota más antigua mandan sobre los 2 de la reciente")
}

// Sin cuotas vencidas no hay transición: la desescalada no ocurre aquí.
func TestEvaluate_SinVencidasNoEscribe(t *testing.T) {
	sub := activeSub(10)
	sub.B2BPaymentStatus = entity.B2BPaymentGracePeriod // quedó así de una corrida anterior

	future := duePayment("p1", -5) // vence en 5 días
	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{future}, defaultGraceDays, testNow)

	assert.False(t, tr.Changed,
		"sin cuotas vencidas no se escribe nada; volver a CURRENT es trabajo de la verificación de pagos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia y estampado único
// ──────────────────────────────────────────────────────────────────────────────

// Reevaluar con el mismo estado ya aplicado produce Changed=false.
func TestEvaluate_SegundaPasadaIdempotente(t *testing.T) {
	sub := activeSub(10)
	payments := []*entity.SchoolB2BPayment{duePayment("p1", 15)}

	first := subscription.Evaluate(sub, payments, defaultGraceDays, testNow)
	require.True(t, first.Changed)

	// Se aplica la transición como lo haría el procesador.
	sub.B2BPaymentStatus = first.B2BPaymentStatus
	stamp := testNow
	sub.B2BDelinquentSince = &stamp

	second := subscription.Evaluate(sub, payments, defaultGraceDays, testNow)
	assert.False(t, second.Changed, "la segunda pasada con los mismos datos no debe reescribir")
}

// La marca de mora se estampa una sola vez: si ya existe no se pide de nuevo.
func TestEvaluate_MarcaDeMoraUnaSolaVez(t *testing.T) {
	sub := activeSub(10)
	old := testNow.AddDate(0, 0, -20)
	sub.B2BDelinquentSince = &old
	sub.B2BPaymentStatus = entity.B2BPaymentGracePeriod

	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 15)}, defaultGraceDays, testNow)

	require.True(t, tr.Changed, "el ascenso a OVERDUE sí se escribe")
	assert.Equal(t, entity.B2BPaymentOverdue, tr.B2BPaymentStatus)
	assert.False(t, tr.StampDelinquentSince, "la marca existente se conserva, no se reestampa")
}

// SUSPENDED es terminal para el proceso automático.
func TestEvaluate_SuspendidaEsTerminal(t *testing.T) {
	sub := activeSub(10)
	sub.Status = entity.SubscriptionSuspended
	sub.B2BPaymentStatus = entity.B2BPaymentSuspended

	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 90)}, defaultGraceDays, testNow)
	assert.False(t, tr.Changed, "una suscripción suspendida no se vuelve a evaluar")
}

func TestEvaluate_CanceladaNoSeToca(t *testing.T) {
	sub := activeSub(10)
	sub.Status = entity.SubscriptionCancelled

	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 90)}, defaultGraceDays, testNow)
	assert.False(t, tr.Changed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Período de gracia por defecto
// ──────────────────────────────────────────────────────────────────────────────

// Suscripción sin gracia propia (0): aplica el valor por defecto configurado.
func TestEvaluate_GraciaPorDefecto(t *testing.T) {
	sub := activeSub(0)
	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 5)}, defaultGraceDays, testNow)

	require.True(t, tr.Changed)
	assert.Equal(t, entity.B2BPaymentGracePeriod, tr.B2BPaymentStatus,
		"5 días con gracia por defecto de 10 sigue en período de gracia")
}

// La gracia propia de la suscripción manda sobre el defecto.
func TestEvaluate_GraciaPropiaMandaSobreElDefecto(t *testing.T) {
	sub := activeSub(3)
	tr := subscription.Evaluate(sub, []*entity.SchoolB2BPayment{duePayment("p1", 5)}, defaultGraceDays, testNow)

	require.True(t, tr.Changed)
	assert.Equal(t, entity.B2BPaymentOverdue, tr.B2BPaymentStatus,
		"5 días con gracia propia de 3 ya está vencida")
}
