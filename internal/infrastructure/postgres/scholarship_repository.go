package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

var _ repository.ScholarshipRepository = (*ScholarshipRepo)(nil)

// ScholarshipRepo implementación de ScholarshipRepository (usable con pool o tx).
type ScholarshipRepo struct {
	q Querier
}

// NewScholarshipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewScholarshipRepository(q Querier) *ScholarshipRepo {
	return &ScholarshipRepo{q: q}
}

const scholarshipColumns = `id, school_id, name, discount_type, discount_value, apply_to, min_gpa, max_beneficiaries, created_at, updated_at`

func scanScholarship(row pgx.Row) (*entity.Scholarship, error) {
	var s entity.Scholarship
	err := row.Scan(
		&s.ID, &s.SchoolID, &s.Name, &s.DiscountType, &s.DiscountValue,
		&s.ApplyTo, &s.MinGPA, &s.MaxBeneficiaries, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene una beca por ID (nil si no existe).
func (r *ScholarshipRepo) GetByID(id string) (*entity.Scholarship, error) {
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships WHERE id = $1`
	s, err := scanScholarship(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scholarship: %w", err)
	}
	return s, nil
}

// ListByIDs obtiene varias becas por ID.
func (r *ScholarshipRepo) ListByIDs(ids []string) ([]*entity.Scholarship, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships WHERE id = ANY($1)`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("list scholarships: %w", err)
	}
	defer rows.Close()
	var list []*entity.Scholarship
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scholarship: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CountActiveBeneficiaries cuenta asignaciones ACTIVA de la beca.
func (r *ScholarshipRepo) CountActiveBeneficiaries(scholarshipID string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM student_scholarships
		WHERE scholarship_id = $1 AND status = $2`
	var count int
	err := r.q.QueryRow(context.Background(), query, scholarshipID, entity.StudentScholarshipActiva).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count beneficiaries: %w", err)
	}
	return count, nil
}

var _ repository.StudentScholarshipRepository = (*StudentScholarshipRepo)(nil)

// StudentScholarshipRepo implementación de StudentScholarshipRepository.
type StudentScholarshipRepo struct {
	q Querier
}

// NewStudentScholarshipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStudentScholarshipRepository(q Querier) *StudentScholarshipRepo {
	return &StudentScholarshipRepo{q: q}
}

const assignmentColumns = `id, scholarship_id, student_id, status, custom_discount_value, valid_from, valid_until, created_at`

// Create persiste una asignación beca-estudiante.
func (r *StudentScholarshipRepo) Create(assignment *entity.StudentScholarship) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO student_scholarships (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		assignment.ID, assignment.ScholarshipID, assignment.StudentID, assignment.Status,
		assignment.CustomDiscountValue, assignment.ValidFrom, assignment.ValidUntil, assignment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("assignment already exists: %w", err)
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func scanAssignment(row pgx.Row) (*entity.StudentScholarship, error) {
	var a entity.StudentScholarship
	err := row.Scan(
		&a.ID, &a.ScholarshipID, &a.StudentID, &a.Status,
		&a.CustomDiscountValue, &a.ValidFrom, &a.ValidUntil, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByScholarshipAndStudent devuelve la asignación existente o nil.
func (r *StudentScholarshipRepo) GetByScholarshipAndStudent(scholarshipID, studentID string) (*entity.StudentScholarship, error) {
	query := `
		SELECT ` + assignmentColumns + ` FROM student_scholarships
		WHERE scholarship_id = $1 AND student_id = $2`
	a, err := scanAssignment(r.q.QueryRow(context.Background(), query, scholarshipID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// ListActiveByStudent devuelve las asignaciones ACTIVA del estudiante.
func (r *StudentScholarshipRepo) ListActiveByStudent(studentID string) ([]*entity.StudentScholarship, error) {
	query := `
		SELECT ` + assignmentColumns + ` FROM student_scholarships
		WHERE student_id = $1 AND status = $2
		ORDER BY valid_from ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, studentID, entity.StudentScholarshipActiva)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StudentScholarship
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
