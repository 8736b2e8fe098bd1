package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/application/usecase"
	"github.com/jhoicas/entregas-api/internal/infrastructure/events"
	"github.com/jhoicas/entregas-api/internal/infrastructure/idempotency"
	infrapdf "github.com/jhoicas/entregas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/entregas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/entregas-api/internal/interfaces/http"
	"github.com/jhoicas/entregas-api/internal/platform/observability"
	"github.com/jhoicas/entregas-api/pkg/config"
	"github.com/jhoicas/entregas-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTel, cfg.App.Name, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema")
	}

	repos := postgres.ReposFor(pool)
	txRunner := postgres.NewTxRunner(pool)

	opts := []ledger.Option{ledger.WithMaxAttempts(cfg.Ledger.MaxAttempts)}

	// Eventos post-commit: solo si hay brokers configurados.
	var publisher *events.Publisher
	if cfg.Kafka.Enabled() {
		publisher = events.NewPublisher(events.NewKafkaWriter(cfg.Kafka))
		opts = append(opts, ledger.WithEventPublisher(publisher))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	// Idempotency-Key: solo si hay Redis configurado.
	var idemStore httpRouter.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := idempotency.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		idemStore = idempotency.NewStore(client, time.Duration(cfg.Redis.IdempotencyTTLMinutes)*time.Minute)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia habilitada")
	}

	orchestrator := ledger.NewOrchestrator(txRunner, log, opts...)
	transactionSvc := ledger.NewTransactionService(repos.Transactions)
	receiptSvc := ledger.NewReceiptService(repos, infrapdf.NewReceiptGenerator(cfg.App.Name))

	productUC := usecase.NewProductUseCase(repos.Products)
	customerUC := usecase.NewCustomerUseCase(repos.Customers)
	warehouseUC := usecase.NewWarehouseUseCase(repos.Warehouses)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Entregas API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:             orchestrator,
		Transactions:       transactionSvc,
		Receipts:           receiptSvc,
		ProductUC:          productUC,
		CustomerUC:         customerUC,
		WarehouseUC:        warehouseUC,
		Idempotency:        idemStore,
		JWTSecret:          cfg.JWT.Secret,
		JWTIssuer:          cfg.JWT.Issuer,
		ServiceName:        cfg.App.Name,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		Logger:             log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador de eventos")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar exportador de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
