package repository

import "github.com/colegia/cobranza-api/internal/domain/entity"

// StudentRepository es el puerto de solo lectura hacia el directorio de
// estudiantes. Facturación lo usa para validar referencias cruzadas antes de
// mutar cargos o becas; el directorio completo vive en otro módulo.
type StudentRepository interface {
	GetByID(id string) (*entity.Student, error)
	ListByIDs(ids []string) ([]*entity.Student, error)
}

// SchoolRepository puerto de solo lectura hacia el directorio de colegios.
type SchoolRepository interface {
	GetByID(id string) (*entity.School, error)
}
