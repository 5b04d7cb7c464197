package entity

// Student es la proyección mínima del directorio de estudiantes que necesita
// facturación: pertenencia al colegio y si está activo. El directorio completo
// es responsabilidad de otro módulo.
type Student struct {
	ID       string
	SchoolID string
	IsActive bool
}

// School proyección mínima del directorio de colegios.
type School struct {
	ID       string
	Name     string
	IsActive bool
}
