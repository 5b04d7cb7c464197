package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
	domainbilling "github.com/colegia/cobranza-api/internal/domain/billing"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
	"github.com/colegia/cobranza-api/pkg/logger"
)

// ScholarshipUseCase asigna becas y calcula el descuento efectivo de un estudiante.
type ScholarshipUseCase struct {
	txRunner        ScholarshipTxRunner
	scholarshipRepo repository.ScholarshipRepository
	assignmentRepo  repository.StudentScholarshipRepository
	studentRepo     repository.StudentRepository
	log             *logger.Logger
	clock           func() time.Time
}

// NewScholarshipUseCase construye el caso de uso.
func NewScholarshipUseCase(
	txRunner ScholarshipTxRunner,
	scholarshipRepo repository.ScholarshipRepository,
	assignmentRepo repository.StudentScholarshipRepository,
	studentRepo repository.StudentRepository,
	log *logger.Logger,
) *ScholarshipUseCase {
	return &ScholarshipUseCase{
		txRunner:        txRunner,
		scholarshipRepo: scholarshipRepo,
		assignmentRepo:  assignmentRepo,
		studentRepo:     studentRepo,
		log:             log,
		clock:           time.Now,
	}
}

// WithClock fija el reloj (tests).
func (uc *ScholarshipUseCase) WithClock(clock func() time.Time) *ScholarshipUseCase {
	uc.clock = clock
	return uc
}

// Assign asigna una beca a un lote de estudiantes.
//
// Reglas:
//   - todos los estudiantes deben existir, estar activos y pertenecer al mismo
//     colegio que la beca (ErrInvalidInput / ErrForbidden).
//   - los que ya tienen la beca se saltan sin error (cuentan en Skipped).
//   - si cupos_actuales + nuevas_asignaciones > max_beneficiaries se rechaza el
//     LOTE COMPLETO con ErrCapacityExceeded; el conteo de beneficiarios no cambia.
//
// El control de cupos y las inserciones ocurren en una sola transacción para
// que dos lotes concurrentes no rebasen el cupo.
func (uc *ScholarshipUseCase) Assign(ctx context.Context, scholarshipID string, in dto.AssignScholarshipRequest) (*dto.AssignScholarshipResponse, error) {
	if scholarshipID == "" || len(in.StudentIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	scholarship, err := uc.scholarshipRepo.GetByID(scholarshipID)
	if err != nil {
		return nil, err
	}
	if scholarship == nil {
		return nil, domain.ErrNotFound
	}

	// Validación de directorio fuera de la tx (solo lectura).
	students, err := uc.studentRepo.ListByIDs(in.StudentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	for _, id := range in.StudentIDs {
		s, ok := byID[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if !s.IsActive {
			return nil, domain.ErrInvalidInput
		}
		if s.SchoolID != scholarship.SchoolID {
			return nil, domain.ErrForbidden
		}
	}

	now := uc.clock()
	resp := &dto.AssignScholarshipResponse{}

	err = uc.txRunner.RunScholarship(ctx, func(
		scholarshipRepo repository.ScholarshipRepository,
		assignmentRepo repository.StudentScholarshipRepository,
	) error {
		// Separar nuevos de ya asignados (los repetidos se saltan, no fallan).
		var toAssign []string
		for _, id := range in.StudentIDs {
			existing, err := assignmentRepo.GetByScholarshipAndStudent(scholarshipID, id)
			if err != nil {
				return err
			}
			if existing != nil {
				resp.Skipped++
				continue
			}
			toAssign = append(toAssign, id)
		}

		if scholarship.MaxBeneficiaries != nil {
			current, err := scholarshipRepo.CountActiveBeneficiaries(scholarshipID)
			if err != nil {
				return err
			}
			if current+len(toAssign) > *scholarship.MaxBeneficiaries {
				return domain.ErrCapacityExceeded
			}
		}

		for _, studentID := range toAssign {
			assignment := &entity.StudentScholarship{
				ID:                  uuid.New().String(),
				ScholarshipID:       scholarshipID,
				StudentID:           studentID,
				Status:              entity.StudentScholarshipActiva,
				CustomDiscountValue: in.CustomDiscountValue,
				ValidFrom:           now,
				CreatedAt:           now,
			}
			if err := assignmentRepo.Create(assignment); err != nil {
				return err
			}
			resp.Assigned++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("scholarship_id", scholarshipID).
		Int("assigned", resp.Assigned).
		Int("skipped", resp.Skipped).
		Msg("lote de asignación de beca procesado")
	return resp, nil
}

// EffectiveDiscount calcula el descuento total de un estudiante para un monto
// base en una categoría de cargo, apilando sus becas activas (política: la más
// antigua primero, cada una contra el saldo restante).
func (uc *ScholarshipUseCase) EffectiveDiscount(ctx context.Context, in dto.DiscountRequest) (*dto.DiscountResponse, error) {
	if in.StudentID == "" || !in.BaseAmount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	assignments, err := uc.assignmentRepo.ListActiveByStudent(in.StudentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ScholarshipID)
	}
	scholarships, err := uc.scholarshipRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Scholarship, len(scholarships))
	for _, s := range scholarships {
		byID[s.ID] = s
	}

	var grants []domainbilling.ScholarshipGrant
	for _, a := range assignments {
		s, ok := byID[a.ScholarshipID]
		if !ok {
			continue
		}
		if in.Category != "" && s.ApplyTo != "" && s.ApplyTo != in.Category {
			continue
		}
		grants = append(grants, domainbilling.ScholarshipGrant{Scholarship: s, Assignment: a})
	}

	discount := domainbilling.StackDiscounts(grants, in.BaseAmount, uc.clock())
	return &dto.DiscountResponse{
		StudentID:  in.StudentID,
		Category:   in.Category,
		BaseAmount: in.BaseAmount,
		Discount:   discount,
		NetAmount:  in.BaseAmount.Sub(discount),
	}, nil
}
