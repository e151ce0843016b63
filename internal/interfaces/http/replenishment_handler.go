package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/application/replenishment"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/pkg/logger"
)

// ReplenishmentHandler maneja las peticiones HTTP del flujo de reposición.
type ReplenishmentHandler struct {
	workflow *replenishment.WorkflowUseCase
	query    *replenishment.QueryUseCase
	log      *logger.Logger
}

// NewReplenishmentHandler construye el handler.
func NewReplenishmentHandler(workflow *replenishment.WorkflowUseCase, query *replenishment.QueryUseCase, log *logger.Logger) *ReplenishmentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReplenishmentHandler{workflow: workflow, query: query, log: log.Component("replenishment_handler")}
}

// CreateAlert godoc
// @Summary      Levantar alerta de bajo stock
// @Tags         replenishment
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAlertRequest  true  "Datos de la alerta"
// @Success      201   {object}  dto.APIResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/replenishment/alert [post]
func (h *ReplenishmentHandler) CreateAlert(c *fiber.Ctx) error {
	var in dto.CreateAlertRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if msg := validateStruct(in); msg != "" {
		return validationError(c, msg)
	}
	out, err := h.workflow.RaiseAlert(c.UserContext(), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.APIResponse{
		Success: true,
		Message: "Alerta de reposición creada",
		Data:    out,
	})
}

// CreateTransferOrder godoc
// @Summary      Crear orden de traslado desde bodega
// @Tags         replenishment
// @Accept       json
// @Produce      json
// @Param        replenishment_id  path  string                          true  "ID de la orden"
// @Param        body              body  dto.CreateTransferOrderRequest  true  "Bodega y stock disponible"
// @Success      200   {object}  dto.APIResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/transfer-order/{replenishment_id} [post]
func (h *ReplenishmentHandler) CreateTransferOrder(c *fiber.Ctx) error {
	var in dto.CreateTransferOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if msg := validateStruct(in); msg != "" {
		return validationError(c, msg)
	}
	out, err := h.workflow.CreateTransferOrder(c.UserContext(), c.Params("replenishment_id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.APIResponse{Success: true, Message: "Orden de traslado creada", Data: out})
}

// DispatchShipment godoc
// @Summary      Despachar envío
// @Tags         replenishment
// @Produce      json
// @Param        replenishment_id  path  string  true  "ID de la orden"
// @Success      200   {object}  dto.APIResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/dispatch/{replenishment_id} [post]
func (h *ReplenishmentHandler) DispatchShipment(c *fiber.Ctx) error {
	out, err := h.workflow.DispatchShipment(c.UserContext(), c.Params("replenishment_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.APIResponse{Success: true, Message: "Envío despachado", Data: out})
}

// ReceiveStock godoc
// @Summary      Recibir stock en tienda
// @Tags         replenishment
// @Produce      json
// @Param        replenishment_id  path  string  true  "ID de la orden"
// @Success      200   {object}  dto.APIResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/receive/{replenishment_id} [post]
func (h *ReplenishmentHandler) ReceiveStock(c *fiber.Ctx) error {
	out, err := h.workflow.ReceiveStock(c.UserContext(), c.Params("replenishment_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.APIResponse{Success: true, Message: "Stock recibido", Data: out})
}

// ListOrders godoc
// @Summary      Listar órdenes de reposición (más recientes primero)
// @Tags         replenishment
// @Produce      json
// @Success      200   {object}  dto.APIResponse
// @Router       /api/replenishment/orders [get]
func (h *ReplenishmentHandler) ListOrders(c *fiber.Ctx) error {
	items, err := h.query.ListAll(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.APIResponse{Success: true, Data: items})
}

// GetOrder godoc
// @Summary      Obtener orden de reposición
// @Tags         replenishment
// @Produce      json
// @Param        replenishment_id  path  string  true  "ID de la orden"
// @Success      200   {object}  dto.APIResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/replenishment/orders/{replenishment_id} [get]
func (h *ReplenishmentHandler) GetOrder(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("replenishment_id"))
	if err != nil {
		return h.writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden de reposición no encontrada"})
	}
	return c.JSON(dto.APIResponse{Success: true, Data: out})
}

// writeError traduce errores de dominio a HTTP.
func (h *ReplenishmentHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return validationError(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrPreconditionFailed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRECONDITION_FAILED", Message: err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func validationError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}
