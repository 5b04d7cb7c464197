package repository

import (
	"github.com/shopspring/decimal"

	"github.com/colegia/cobranza-api/internal/domain/entity"
)

// ChargeRepository define el puerto de persistencia para cargos.
type ChargeRepository interface {
	Create(charge *entity.Charge) error
	GetByID(id string) (*entity.Charge, error)
	// GetByIDForUpdate obtiene el cargo bloqueando la fila (SELECT ... FOR UPDATE).
	// Solo tiene sentido dentro de una transacción: serializa registros de pago
	// concurrentes sobre el mismo cargo.
	GetByIDForUpdate(id string) (*entity.Charge, error)
	// Update persiste amount_paid y status recalculados.
	Update(charge *entity.Charge) error
}

// PaymentRepository define el puerto de persistencia para pagos (append-only).
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	GetByID(id string) (*entity.Payment, error)
	// ListByChargeID devuelve los pagos del cargo ordenados por paid_at descendente.
	ListByChargeID(chargeID string) ([]*entity.Payment, error)
	// SumByChargeID suma todos los pagos del cargo (reversas incluidas, que
	// restan por ser negativas). Es la fuente de verdad de amount_paid.
	SumByChargeID(chargeID string) (decimal.Decimal, error)
	// HasReversal indica si ya existe un ajuste que reversa el pago dado.
	HasReversal(paymentID string) (bool, error)
}
