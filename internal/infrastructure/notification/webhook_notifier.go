package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/colegia/cobranza-api/internal/application/billing"
	appsub "github.com/colegia/cobranza-api/internal/application/subscription"
	"github.com/colegia/cobranza-api/internal/domain/entity"
)

// Verificar en tiempo de compilación que WebhookNotifier implementa los puertos.
var _ billing.Notifier = (*WebhookNotifier)(nil)
var _ appsub.StateNotifier = (*WebhookNotifier)(nil)

// WebhookNotifier envía eventos al servicio de notificaciones vía webhook HTTP.
// Es un colaborador best-effort: el caller registra la falla y sigue; la
// escritura financiera ya quedó confirmada cuando se invoca.
type WebhookNotifier struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewWebhookNotifier construye el adaptador. baseURL vacío = notificador apagado
// (los métodos retornan nil sin llamar a nadie, útil en dev y tests).
func NewWebhookNotifier(baseURL string) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil // el caller decide qué loguear
	return &WebhookNotifier{baseURL: baseURL, client: client}
}

type paymentRecordedEvent struct {
	Event      string    `json:"event"`
	ChargeID   string    `json:"charge_id"`
	StudentID  string    `json:"student_id"`
	SchoolID   string    `json:"school_id"`
	PaymentID  string    `json:"payment_id"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type stateChangedEvent struct {
	Event          string    `json:"event"`
	SubscriptionID string    `json:"subscription_id"`
	SchoolID       string    `json:"school_id"`
	OldState       string    `json:"old_state"`
	NewState       string    `json:"new_state"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NotifyPaymentRecorded notifica el registro de un pago.
func (n *WebhookNotifier) NotifyPaymentRecorded(ctx context.Context, charge *entity.Charge, payment *entity.Payment) error {
	if n.baseURL == "" {
		return nil
	}
	return n.post(ctx, "/events/payment-recorded", paymentRecordedEvent{
		Event:      "payment_recorded",
		ChargeID:   charge.ID,
		StudentID:  charge.StudentID,
		SchoolID:   charge.SchoolID,
		PaymentID:  payment.ID,
		Amount:     payment.Amount.StringFixed(2),
		Status:     charge.Status,
		OccurredAt: time.Now(),
	})
}

// NotifySubscriptionStateChanged notifica un cambio de estado de suscripción.
func (n *WebhookNotifier) NotifySubscriptionStateChanged(ctx context.Context, sub *entity.SchoolSubscription, oldState, newState string) error {
	if n.baseURL == "" {
		return nil
	}
	return n.post(ctx, "/events/subscription-state-changed", stateChangedEvent{
		Event:          "subscription_state_changed",
		SubscriptionID: sub.ID,
		SchoolID:       sub.SchoolID,
		OldState:       oldState,
		NewState:       newState,
		OccurredAt:     time.Now(),
	})
}

func (n *WebhookNotifier) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("enviar evento: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("servicio de notificaciones respondió %d", resp.StatusCode)
	}
	return nil
}
