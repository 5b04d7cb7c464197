package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/colegia/cobranza-api/internal/application/billing"
	appsub "github.com/colegia/cobranza-api/internal/application/subscription"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordPayment *billing.RecordPaymentUseCase
	ScholarshipUC *billing.ScholarshipUseCase
	QuoteUC       *billing.QuoteUseCase
	Delinquency   *appsub.DelinquencyProcessor
	VerifyPayment *appsub.VerifyPaymentUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Charges: libro mayor de cargos y pagos (protegido)
	charges := protected.Group("/charges", RequireRole("admin", "finanzas"))
	chargeHandler := NewChargeHandler(deps.RecordPayment)
	charges.Post("/:id/payments", chargeHandler.RecordPayment)
	charges.Get("/:id/payments", chargeHandler.ListPayments)
	charges.Post("/:id/payments/:paymentId/reverse", chargeHandler.ReversePayment)

	// Scholarships: asignación y descuento efectivo (protegido)
	scholarships := protected.Group("/scholarships", RequireRole("admin", "finanzas"))
	scholarshipHandler := NewScholarshipHandler(deps.ScholarshipUC)
	scholarships.Post("/:id/assignments", scholarshipHandler.Assign)
	scholarships.Post("/discount", scholarshipHandler.EffectiveDiscount)

	// Quotes y catálogo de planes (protegido)
	quoteHandler := NewQuoteHandler(deps.QuoteUC)
	quotes := protected.Group("/quotes", RequireRole("admin", "finanzas", "ventas"))
	quotes.Post("/", quoteHandler.Calculate)
	plans := protected.Group("/plans", RequireRole("admin"))
	plans.Put("/:type", quoteHandler.DefinePlan)
	tiers := protected.Group("/setup-fee-tiers", RequireRole("admin"))
	tiers.Put("/:name", quoteHandler.DefineTier)

	// Subscriptions: morosidad, verificación B2B y reactivación (protegido)
	subscriptionHandler := NewSubscriptionHandler(deps.Delinquency, deps.VerifyPayment)
	subscriptions := protected.Group("/subscriptions", RequireRole("admin", "finanzas", "scheduler"))
	subscriptions.Post("/delinquency-pass", subscriptionHandler.RunDelinquencyPass)
	subscriptions.Post("/:id/reactivate", subscriptionHandler.Reactivate)
	b2bPayments := protected.Group("/b2b-payments", RequireRole("admin", "finanzas"))
	b2bPayments.Post("/:id/verify", subscriptionHandler.VerifyB2BPayment)
}
