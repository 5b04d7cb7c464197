package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegia/cobranza-api/internal/application/dto"
	appsub "github.com/colegia/cobranza-api/internal/application/subscription"
	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeSchoolRepo directorio de colegios en memoria. Por defecto todo colegio
// consultado existe y está activo, salvo los marcados como inactivos.
type fakeSchoolRepo struct {
	inactive map[string]bool
}

func (r *fakeSchoolRepo) GetByID(id string) (*entity.School, error) {
	return &entity.School{ID: id, Name: "Colegio " + id, IsActive: !r.inactive[id]}, nil
}

func buildVerifyUC(subRepo *fakeSubRepo, b2bRepo *fakeB2BRepo, notifier *fakeStateNotifier) *appsub.VerifyPaymentUseCase {
	return buildVerifyUCConSchools(subRepo, b2bRepo, &fakeSchoolRepo{}, notifier)
}

func buildVerifyUCConSchools(subRepo *fakeSubRepo, b2bRepo *fakeB2BRepo, schoolRepo *fakeSchoolRepo, notifier *fakeStateNotifier) *appsub.VerifyPaymentUseCase {
	tx := &fakeSubTx{subRepo: subRepo, b2bRepo: b2bRepo}
	return appsub.NewVerifyPaymentUseCase(tx, b2bRepo, subRepo, schoolRepo, notifier, logger.Nop()).
		WithClock(func() time.Time { return testNow })
}

func delinquentSub(id, fineState string) *entity.SchoolSubscription {
	s := sub(id, 10)
	s.B2BPaymentStatus = fineState
	stamp := testNow.AddDate(0, 0, -20)
	s.B2BDelinquentSince = &stamp
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Verify — verificación y recuperación
// ──────────────────────────────────────────────────────────────────────────────

// Verificar la única cuota vencida de una suscripción en OVERDUE la recupera:
// vuelve a CURRENT y se limpia la marca de mora.
func TestVerify_RecuperaLaSuscripcion(t *testing.T) {
	subRepo := newFakeSubRepo(delinquentSub("sub-1", entity.B2BPaymentOverdue))
	b2bRepo := newFakeB2BRepo(b2bDue("p1", "sub-1", 15))
	notifier := &fakeStateNotifier{}
	uc := buildVerifyUC(subRepo, b2bRepo, notifier)

	resp, err := uc.Verify(context.Background(), "p1", "user-1", dto.VerifyB2BPaymentRequest{Notes: "transferencia confirmada"})
	require.NoError(t, err)

	assert.Equal(t, entity.B2BInvoiceVerified, resp.Status)
	require.NotNil(t, resp.VerifiedAt)
	assert.True(t, resp.VerifiedAt.Equal(testNow))
	assert.Equal(t, "user-1", resp.VerifiedByID)
	assert.Equal(t, "transferencia confirmada", resp.Notes)

	s, _ := subRepo.GetByID("sub-1")
	assert.Equal(t, entity.B2BPaymentCurrent, s.B2BPaymentStatus, "sin cuotas vencidas vuelve a CURRENT")
	assert.Nil(t, s.B2BDelinquentSince, "la marca de mora se limpia al recuperarse")

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "sub-1:OVERDUE->CURRENT", notifier.events[0])
}

// Si queda otra cuota vencida pendiente, la verificación no recupera.
func TestVerify_OtraCuotaVencidaImpideRecuperar(t *testing.T) {
	subRepo := newFakeSubRepo(delinquentSub("sub-1", entity.B2BPaymentOverdue))
	b2bRepo := newFakeB2BRepo(b2bDue("p1", "sub-1", 15), b2bDue("p2", "sub-1", 40))
	notifier := &fakeStateNotifier{}
	uc := buildVerifyUC(subRepo, b2bRepo, notifier)

	_, err := uc.Verify(context.Background(), "p1", "user-1", dto.VerifyB2BPaymentRequest{})
	require.NoError(t, err)

	s, _ := subRepo.GetByID("sub-1")
	assert.Equal(t, entity.B2BPaymentOverdue, s.B2BPaymentStatus, "p2 sigue vencida")
	assert.NotNil(t, s.B2BDelinquentSince, "la marca se conserva mientras haya mora")
	assert.Empty(t, notifier.events, "sin recuperación no hay notificación")
}

// La recuperación automática nunca saca de SUSPENDED: eso exige Reactivate.
func TestVerify_SuspendidaNoSeRecuperaAutomaticamente(t *testing.T) {
	suspended := delinquentSub("sub-1", entity.B2BPaymentSuspended)
	suspended.Status = entity.SubscriptionSuspended
	suspendedAt := testNow.AddDate(0, 0, -5)
	suspended.B2BSuspendedAt = &suspendedAt
	subRepo := newFakeSubRepo(suspended)
	b2bRepo := newFakeB2BRepo(b2bDue("p1", "sub-1", 50))
	uc := buildVerifyUC(subRepo, b2bRepo, &fakeStateNotifier{})

	resp, err := uc.Verify(context.Background(), "p1", "user-1", dto.VerifyB2BPaymentRequest{})
	require.NoError(t, err, "la cuota sí se verifica")
	assert.Equal(t, entity.B2BInvoiceVerified, resp.Status)

	s, _ := subRepo.GetByID("sub-1")
	assert.Equal(t, entity.B2BPaymentSuspended, s.B2BPaymentStatus,
		"SUSPENDED solo se deshace con la reactivación manual")
	assert.NotNil(t, s.B2BSuspendedAt)
}

// Una cuota ya verificada no se verifica dos veces.
func TestVerify_DobleVerificacionRechazada(t *testing.T) {
	subRepo := newFakeSubRepo(delinquentSub("sub-1", entity.B2BPaymentGracePeriod))
	b2bRepo := newFakeB2BRepo(b2bDue("p1", "sub-1", 5))
	uc := buildVerifyUC(subRepo, b2bRepo, &fakeStateNotifier{})

	_, err := uc.Verify(context.Background(), "p1", "user-1", dto.VerifyB2BPaymentRequest{})
	require.NoError(t, err)

	_, err = uc.Verify(context.Background(), "p1", "user-2", dto.VerifyB2BPaymentRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVerify_CuotaInexistente(t *testing.T) {
	uc := buildVerifyUC(newFakeSubRepo(), newFakeB2BRepo(), &fakeStateNotifier{})
	_, err := uc.Verify(context.Background(), "p-x", "user-1", dto.VerifyB2BPaymentRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reactivate — salida manual de SUSPENDED
// ──────────────────────────────────────────────────────────────────────────────

func TestReactivate_LimpiaElEstadoSuspendido(t *testing.T) {
	suspended := delinquentSub("sub-1", entity.B2BPaymentSuspended)
	suspended.Status = entity.SubscriptionSuspended
	suspendedAt := testNow.AddDate(0, 0, -5)
	suspended.B2BSuspendedAt = &suspendedAt
	subRepo := newFakeSubRepo(suspended)
	notifier := &fakeStateNotifier{}
	uc := buildVerifyUC(subRepo, newFakeB2BRepo(), notifier)

	resp, err := uc.Reactivate(context.Background(), "sub-1")
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionActive, resp.Status)
	assert.Equal(t, entity.B2BPaymentCurrent, resp.B2BPaymentStatus)
	assert.Nil(t, resp.B2BDelinquentSince)
	assert.Nil(t, resp.B2BSuspendedAt)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "sub-1:SUSPENDED->CURRENT", notifier.events[0])
}

// Un colegio dado de baja en el directorio bloquea la reactivación.
func TestReactivate_ColegioInactivoRechazado(t *testing.T) {
	suspended := delinquentSub("sub-1", entity.B2BPaymentSuspended)
	suspended.Status = entity.SubscriptionSuspended
	subRepo := newFakeSubRepo(suspended)
	schools := &fakeSchoolRepo{inactive: map[string]bool{"school-sub-1": true}}
	uc := buildVerifyUCConSchools(subRepo, newFakeB2BRepo(), schools, &fakeStateNotifier{})

	_, err := uc.Reactivate(context.Background(), "sub-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	s, _ := subRepo.GetByID("sub-1")
	assert.Equal(t, entity.B2BPaymentSuspended, s.B2BPaymentStatus,
		"la suscripción sigue suspendida")
}

func TestReactivate_NoSuspendidaEsConflicto(t *testing.T) {
	subRepo := newFakeSubRepo(sub("sub-1", 10))
	uc := buildVerifyUC(subRepo, newFakeB2BRepo(), &fakeStateNotifier{})

	_, err := uc.Reactivate(context.Background(), "sub-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReactivate_CanceladaNoSeReactiva(t *testing.T) {
	cancelled := sub("sub-1", 10)
	cancelled.Status = entity.SubscriptionCancelled
	cancelled.B2BPaymentStatus = entity.B2BPaymentCancelled
	subRepo := newFakeSubRepo(cancelled)
	uc := buildVerifyUC(subRepo, newFakeB2BRepo(), &fakeStateNotifier{})

	_, err := uc.Reactivate(context.Background(), "sub-1")
	assert.ErrorIs(t, err, domain.ErrSubscriptionClosed)
}

func TestReactivate_Inexistente(t *testing.T) {
	uc := buildVerifyUC(newFakeSubRepo(), newFakeB2BRepo(), &fakeStateNotifier{})
	_, err := uc.Reactivate(context.Background(), "sub-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
