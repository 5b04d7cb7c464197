package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
)

var _ repository.StudentRepository = (*StudentRepo)(nil)

// StudentRepo lectura del directorio de estudiantes (el directorio completo es
// de otro módulo; facturación solo valida referencias).
type StudentRepo struct {
	q Querier
}

// NewStudentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStudentRepository(q Querier) *StudentRepo {
	return &StudentRepo{q: q}
}

// GetByID obtiene la proyección mínima de un estudiante (nil si no existe).
func (r *StudentRepo) GetByID(id string) (*entity.Student, error) {
	const query = `SELECT id, school_id, is_active FROM students WHERE id = $1`
	var s entity.Student
	err := r.q.QueryRow(context.Background(), query, id).Scan(&s.ID, &s.SchoolID, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

// ListByIDs obtiene varios estudiantes por ID.
func (r *StudentRepo) ListByIDs(ids []string) ([]*entity.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, school_id, is_active FROM students WHERE id = ANY($1)`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	var list []*entity.Student
	for rows.Next() {
		var s entity.Student
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

var _ repository.SchoolRepository = (*SchoolRepo)(nil)

// SchoolRepo lectura del directorio de colegios.
type SchoolRepo struct {
	q Querier
}

// NewSchoolRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSchoolRepository(q Querier) *SchoolRepo {
	return &SchoolRepo{q: q}
}

// GetByID obtiene la proyección mínima de un colegio (nil si no existe).
func (r *SchoolRepo) GetByID(id string) (*entity.School, error) {
	const query = `SELECT id, name, is_active FROM schools WHERE id = $1`
	var s entity.School
	err := r.q.QueryRow(context.Background(), query, id).Scan(&s.ID, &s.Name, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school: %w", err)
	}
	return &s, nil
}
