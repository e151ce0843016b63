package replenishment

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
	"github.com/jhoicas/replenishment-api/pkg/idgen"
	"github.com/jhoicas/replenishment-api/pkg/logger"
	"github.com/jhoicas/replenishment-api/pkg/metrics"
)

// WorkflowUseCase máquina de estados de la orden de reposición.
// Cada operación: carga, valida la precondición, muta, persiste y notifica.
// Si la precondición falla no se escribe nada.
type WorkflowUseCase struct {
	repo     repository.ReplenishmentOrderRepository
	ids      IDGenerator
	notifier Notifier
	channels Channels
	now      Clock
	metrics  *metrics.WorkflowMetrics
	log      *logger.Logger
}

// NewWorkflowUseCase construye el caso de uso. clock nil = time.Now; m y log pueden ser nil.
func NewWorkflowUseCase(
	repo repository.ReplenishmentOrderRepository,
	ids IDGenerator,
	notifier Notifier,
	channels Channels,
	clock Clock,
	m *metrics.WorkflowMetrics,
	log *logger.Logger,
) *WorkflowUseCase {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WorkflowUseCase{
		repo:     repo,
		ids:      ids,
		notifier: notifier,
		channels: channels,
		now:      clock,
		metrics:  m,
		log:      log.Component("replenishment_workflow"),
	}
}

// RaiseAlert crea la orden en ALERT_RAISED y publica alert-raised.
func (uc *WorkflowUseCase) RaiseAlert(ctx context.Context, in dto.CreateAlertRequest) (out *dto.ReplenishmentOrderResponse, err error) {
	defer uc.observe(entity.OpRaiseAlert, time.Now(), &err)

	if in.CurrentQuantity == nil || in.ReorderThreshold == nil || in.RequestedQuantity == nil {
		return nil, fmt.Errorf("%w: cantidades requeridas", domain.ErrInvalidInput)
	}
	params := entity.NewOrderParams{
		StoreID:           in.StoreID,
		StoreName:         in.StoreName,
		ProductID:         in.ProductID,
		ProductName:       in.ProductName,
		CurrentQuantity:   *in.CurrentQuantity,
		ReorderThreshold:  *in.ReorderThreshold,
		RequestedQuantity: *in.RequestedQuantity,
	}
	// Validar antes de consumir un identificador
	if err := params.Validate(); err != nil {
		return nil, err
	}

	order, err := entity.NewReplenishmentOrder(uc.ids.Generate(idgen.PrefixReplenishment), params, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Insert(ctx, order); err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, uc.channels.AlertRaised, order.ReplenishmentID, AlertRaisedEvent{
		ReplenishmentID:   order.ReplenishmentID,
		StoreID:           order.StoreID,
		ProductID:         order.ProductID,
		RequestedQuantity: order.RequestedQuantity,
	})
	uc.logTransition(order)
	return ToReplenishmentOrderResponse(order), nil
}

// CreateTransferOrder ALERT_RAISED -> PENDING_PICKING. Requiere warehouseStock >= requested_quantity.
func (uc *WorkflowUseCase) CreateTransferOrder(ctx context.Context, replenishmentID string, in dto.CreateTransferOrderRequest) (out *dto.ReplenishmentOrderResponse, err error) {
	defer uc.observe(entity.OpCreateTransferOrder, time.Now(), &err)

	// NotFound antes que cualquier error del cuerpo
	order, err := uc.load(ctx, replenishmentID)
	if err != nil {
		return nil, err
	}
	if in.WarehouseStock == nil {
		return nil, fmt.Errorf("%w: warehouse_stock es requerido", domain.ErrInvalidInput)
	}
	stock := *in.WarehouseStock
	if err := order.CheckTransferOrder(in.WarehouseID, stock); err != nil {
		return nil, err
	}
	transferOrderID := uc.ids.Generate(idgen.PrefixTransferOrder)
	if err := order.AssignTransferOrder(transferOrderID, in.WarehouseID, stock, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, uc.channels.TransferOrderCreated, order.ReplenishmentID, TransferOrderCreatedEvent{
		ReplenishmentID: order.ReplenishmentID,
		TransferOrderID: transferOrderID,
		WarehouseID:     order.WarehouseID,
		Quantity:        order.RequestedQuantity,
	})
	uc.logTransition(order)
	return ToReplenishmentOrderResponse(order), nil
}

// DispatchShipment PENDING_PICKING -> IN_TRANSIT, genera el número de guía.
func (uc *WorkflowUseCase) DispatchShipment(ctx context.Context, replenishmentID string) (out *dto.ReplenishmentOrderResponse, err error) {
	defer uc.observe(entity.OpDispatchShipment, time.Now(), &err)

	order, err := uc.load(ctx, replenishmentID)
	if err != nil {
		return nil, err
	}
	if err := order.CheckTransition(entity.OpDispatchShipment); err != nil {
		return nil, err
	}
	trackingNumber := uc.ids.GenerateUpper(idgen.PrefixTracking)
	if err := order.DispatchShipment(trackingNumber, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, uc.channels.ShipmentDispatched, order.ReplenishmentID, ShipmentDispatchedEvent{
		ReplenishmentID: order.ReplenishmentID,
		TrackingNumber:  trackingNumber,
		StoreID:         order.StoreID,
	})
	uc.logTransition(order)
	return ToReplenishmentOrderResponse(order), nil
}

// ReceiveStock IN_TRANSIT -> COMPLETED.
func (uc *WorkflowUseCase) ReceiveStock(ctx context.Context, replenishmentID string) (out *dto.ReplenishmentOrderResponse, err error) {
	defer uc.observe(entity.OpReceiveStock, time.Now(), &err)

	order, err := uc.load(ctx, replenishmentID)
	if err != nil {
		return nil, err
	}
	if err := order.ReceiveStock(uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notifier.Publish(ctx, uc.channels.StockReceived, order.ReplenishmentID, StockReceivedEvent{
		ReplenishmentID:  order.ReplenishmentID,
		StoreID:          order.StoreID,
		ProductID:        order.ProductID,
		QuantityReceived: order.RequestedQuantity,
	})
	uc.logTransition(order)
	return ToReplenishmentOrderResponse(order), nil
}

// load obtiene la orden o domain.ErrNotFound.
func (uc *WorkflowUseCase) load(ctx context.Context, replenishmentID string) (*entity.ReplenishmentOrder, error) {
	order, err := uc.repo.GetByReplenishmentID(ctx, replenishmentID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, replenishmentID)
	}
	return order, nil
}

func (uc *WorkflowUseCase) observe(op entity.Operation, start time.Time, err *error) {
	uc.metrics.ObserveTransition(string(op), *err, time.Since(start))
	if *err != nil {
		uc.log.Debug().Str("operation", string(op)).Err(*err).Msg("transición rechazada")
	}
}

func (uc *WorkflowUseCase) logTransition(order *entity.ReplenishmentOrder) {
	uc.log.Info().
		Str("replenishment_id", order.ReplenishmentID).
		Str("status", string(order.Status)).
		Int("stages", len(order.StageHistory)).
		Msg("orden de reposición actualizada")
}
