package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/replenishment-api/internal/application/replenishment"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/kafka"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/memory"
	"github.com/jhoicas/replenishment-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/replenishment-api/internal/interfaces/http"
	"github.com/jhoicas/replenishment-api/pkg/config"
	"github.com/jhoicas/replenishment-api/pkg/idgen"
	"github.com/jhoicas/replenishment-api/pkg/logger"
	"github.com/jhoicas/replenishment-api/pkg/metrics"
)

// notifier es lo que main necesita de kafka.Notifier y kafka.LogNotifier.
type notifier interface {
	replenishment.Notifier
	io.Closer
}

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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		repo repository.ReplenishmentOrderRepository
		pool *pgxpool.Pool
	)
	switch cfg.App.StoreDriver {
	case "memory":
		repo = memory.NewReplenishmentOrderRepository()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		repo = postgres.NewReplenishmentOrderRepository(pool)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics := metrics.NewWorkflowMetrics(reg)

	// Sin brokers el notificador solo registra los eventos (modo simulación)
	var events notifier
	if cfg.Kafka.Enabled() {
		events = kafka.NewNotifier(cfg.Kafka, workflowMetrics, log)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("notificador Kafka habilitado")
	} else {
		events = kafka.NewLogNotifier(workflowMetrics, log)
		log.Info().Msg("KAFKA_BROKERS vacío: notificador en modo simulación")
	}

	channels := replenishment.Channels{
		AlertRaised:          cfg.Kafka.Topics.AlertRaised,
		TransferOrderCreated: cfg.Kafka.Topics.TransferOrderCreated,
		ShipmentDispatched:   cfg.Kafka.Topics.ShipmentDispatched,
		StockReceived:        cfg.Kafka.Topics.StockReceived,
	}
	workflowUC := replenishment.NewWorkflowUseCase(repo, idgen.New(nil), events, channels, nil, workflowMetrics, log)
	queryUC := replenishment.NewQueryUseCase(repo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Replenishment API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger no disponible")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Workflow:  workflowUC,
		Query:     queryUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
		Gatherer:  reg,

		AllowOrigins: cfg.HTTP.CORSAllowedOrigins,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: transiciones sin autenticación")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Después del servidor: ya no entran transiciones, se drenan los eventos en vuelo
	if err := events.Close(); err != nil {
		log.Error().Err(err).Msg("cierre del notificador")
	}
	if pool != nil {
		pool.Close()
	}

	log.Info().Msg("aplicación detenida")
}
