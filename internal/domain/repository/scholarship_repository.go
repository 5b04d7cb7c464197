package repository

import "github.com/colegia/cobranza-api/internal/domain/entity"

// ScholarshipRepository define el puerto de persistencia para becas.
type ScholarshipRepository interface {
	GetByID(id string) (*entity.Scholarship, error)
	ListByIDs(ids []string) ([]*entity.Scholarship, error)
	// CountActiveBeneficiaries cuenta asignaciones en estado ACTIVA de la beca.
	// Se usa para el control de cupos (max_beneficiaries) al asignar.
	CountActiveBeneficiaries(scholarshipID string) (int, error)
}

// StudentScholarshipRepository define el puerto para asignaciones beca-estudiante.
type StudentScholarshipRepository interface {
	Create(assignment *entity.StudentScholarship) error
	// GetByScholarshipAndStudent devuelve la asignación existente o nil.
	GetByScholarshipAndStudent(scholarshipID, studentID string) (*entity.StudentScholarship, error)
	// ListActiveByStudent devuelve las asignaciones ACTIVA del estudiante.
	ListActiveByStudent(studentID string) ([]*entity.StudentScholarship, error)
}
