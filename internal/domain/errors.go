package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrChargeClosed        = errors.New("el cargo está cancelado y no admite pagos")
	ErrOverpaymentRejected = errors.New("el pago excede el saldo pendiente del cargo")
	ErrPaymentReversed     = errors.New("el pago ya fue reversado")
	ErrCapacityExceeded    = errors.New("la beca no tiene cupos disponibles para todos los estudiantes")
	ErrPlanNotFound        = errors.New("plan de suscripción no encontrado")
	ErrInvalidShares       = errors.New("los porcentajes de participación deben sumar 100")
	ErrTierOverlap         = errors.New("los rangos de tarifas de instalación se superponen")
	ErrBatchInProgress     = errors.New("ya hay una corrida de morosidad en ejecución")
	ErrSubscriptionClosed  = errors.New("la suscripción está cancelada o suspendida")
)
