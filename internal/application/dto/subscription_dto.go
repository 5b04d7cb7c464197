package dto

import "time"

// DelinquencyError error por suscripción dentro de la corrida de morosidad.
type DelinquencyError struct {
	SubscriptionID string `json:"subscription_id"`
	Message        string `json:"message"`
}

// DelinquencyReport reporte agregado de una corrida de morosidad.
// Resumed indica que la corrida partió de un cursor guardado; Incomplete que
// se agotó el plazo y quedó cursor para la próxima ejecución.
type DelinquencyReport struct {
	Processed        int                `json:"processed"`
	GracePeriodCount int                `json:"grace_period_count"`
	OverdueCount     int                `json:"overdue_count"`
	SuspendedCount   int                `json:"suspended_count"`
	Errors           []DelinquencyError `json:"errors"`
	Resumed          bool               `json:"resumed"`
	Incomplete       bool               `json:"incomplete"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       time.Time          `json:"finished_at"`
}

// VerifyB2BPaymentRequest cuerpo de POST /api/b2b-payments/:id/verify.
type VerifyB2BPaymentRequest struct {
	Notes string `json:"notes"`
}

// B2BPaymentResponse cuota B2B tras la verificación.
type B2BPaymentResponse struct {
	ID             string     `json:"id"`
	SubscriptionID string     `json:"subscription_id"`
	PeriodLabel    string     `json:"period_label"`
	DueDate        time.Time  `json:"due_date"`
	Status         string     `json:"status"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	VerifiedByID   string     `json:"verified_by_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// SubscriptionResponse estado de una suscripción B2B.
type SubscriptionResponse struct {
	ID                 string     `json:"id"`
	SchoolID           string     `json:"school_id"`
	PlanType           string     `json:"plan_type"`
	Status             string     `json:"status"`
	B2BPaymentStatus   string     `json:"b2b_payment_status"`
	B2BGracePeriodDays int        `json:"b2b_grace_period_days"`
	B2BDelinquentSince *time.Time `json:"b2b_delinquent_since,omitempty"`
	B2BSuspendedAt     *time.Time `json:"b2b_suspended_at,omitempty"`
}
