package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/replenishment-api/internal/application/replenishment"
	"github.com/jhoicas/replenishment-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Workflow  *replenishment.WorkflowUseCase
	Query     *replenishment.QueryUseCase
	JWTSecret string
	Logger    *logger.Logger
	Gatherer  prometheus.Gatherer // nil = sin /metrics
	// AllowOrigins orígenes CORS separados por comas; vacío = sin CORS.
	AllowOrigins string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	// La UI web se sirve desde otro origen
	if deps.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: deps.AllowOrigins,
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,Authorization",
			MaxAge:       300,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	h := NewReplenishmentHandler(deps.Workflow, deps.Query, log)
	rep := app.Group("/api/replenishment")

	// Consultas (público)
	rep.Get("/orders", h.ListOrders)
	rep.Get("/orders/:replenishment_id", h.GetOrder)

	// Transiciones: con JWT_SECRET exigen token y rol
	store := []fiber.Handler{AuthMiddleware(deps.JWTSecret)}
	warehouse := []fiber.Handler{AuthMiddleware(deps.JWTSecret)}
	if deps.JWTSecret != "" {
		store = append(store, RequireRole(RoleStore))
		warehouse = append(warehouse, RequireRole(RoleWarehouse))
	}

	rep.Post("/alert", append(store, h.CreateAlert)...)
	rep.Post("/transfer-order/:replenishment_id", append(warehouse, h.CreateTransferOrder)...)
	rep.Post("/dispatch/:replenishment_id", append(warehouse, h.DispatchShipment)...)
	rep.Post("/receive/:replenishment_id", append(store, h.ReceiveStock)...)
}
