package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	appbilling "github.com/colegia/cobranza-api/internal/application/billing"
	appsub "github.com/colegia/cobranza-api/internal/application/subscription"
	"github.com/colegia/cobranza-api/internal/domain"
	"github.com/colegia/cobranza-api/internal/infrastructure/notification"
	"github.com/colegia/cobranza-api/internal/infrastructure/postgres"
	httpRouter "github.com/colegia/cobranza-api/internal/interfaces/http"
	"github.com/colegia/cobranza-api/pkg/config"
	"github.com/colegia/cobranza-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	chargeRepo := postgres.NewChargeRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	scholarshipRepo := postgres.NewScholarshipRepository(pool)
	assignmentRepo := postgres.NewStudentScholarshipRepository(pool)
	studentRepo := postgres.NewStudentRepository(pool)
	schoolRepo := postgres.NewSchoolRepository(pool)
	planRepo := postgres.NewSubscriptionPlanRepository(pool)
	tierRepo := postgres.NewSetupFeeTierRepository(pool)
	subRepo := postgres.NewSchoolSubscriptionRepository(pool)
	b2bRepo := postgres.NewB2BPaymentRepository(pool)
	cursorRepo := postgres.NewDelinquencyCursorRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier := notification.NewWebhookNotifier(cfg.Billing.NotifierURL)

	recordPaymentUC := appbilling.NewRecordPaymentUseCase(
		txRunner, chargeRepo, paymentRepo, notifier, log,
		cfg.Billing.OverpaymentPolicy,
	)
	scholarshipUC := appbilling.NewScholarshipUseCase(
		txRunner, scholarshipRepo, assignmentRepo, studentRepo, log,
	)
	quoteUC := appbilling.NewQuoteUseCase(planRepo, tierRepo, cfg.Billing.CatalogCacheTTL)
	delinquencyProcessor := appsub.NewDelinquencyProcessor(
		txRunner, subRepo, b2bRepo, cursorRepo, notifier, log,
		cfg.Billing.DelinquencyTimeout, cfg.Billing.DefaultGracePeriodDays,
	)
	verifyPaymentUC := appsub.NewVerifyPaymentUseCase(txRunner, b2bRepo, subRepo, schoolRepo, notifier, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Cobranza API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecordPayment: recordPaymentUC,
		ScholarshipUC: scholarshipUC,
		QuoteUC:       quoteUC,
		Delinquency:   delinquencyProcessor,
		VerifyPayment: verifyPaymentUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	// Pasada periódica de morosidad. El procesador garantiza corrida única:
	// si un disparo manual está en curso, el tick del cron se salta sin más.
	var scheduler *cron.Cron
	if cfg.Billing.DelinquencyCronSpec != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Billing.DelinquencyCronSpec, func() {
			report, err := delinquencyProcessor.Run(context.Background())
			if err != nil {
				if errors.Is(err, domain.ErrBatchInProgress) {
					log.Warn().Msg("pasada de morosidad ya en curso, tick del cron omitido")
					return
				}
				log.Error().Err(err).Msg("pasada de morosidad programada falló")
				return
			}
			if report.Incomplete {
				log.Warn().Int("processed", report.Processed).
					Msg("pasada de morosidad incompleta, se reanudará en la próxima corrida")
			}
		})
		if err != nil {
			log.Fatal().Err(err).
				Str("spec", cfg.Billing.DelinquencyCronSpec).
				Msg("expresión cron de morosidad inválida")
		}
		scheduler.Start()
		log.Info().Str("spec", cfg.Billing.DelinquencyCronSpec).Msg("scheduler de morosidad iniciado")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	if scheduler != nil {
		// Espera a que termine un tick en curso antes de soltar el pool.
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
