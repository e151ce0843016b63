package entity

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jhoicas/replenishment-api/internal/domain"
)

// Status estado de una orden de reposición. Progresión lineal estricta:
//
//	ALERT_RAISED -> PENDING_PICKING -> IN_TRANSIT -> COMPLETED
type Status string

const (
	StatusAlertRaised    Status = "ALERT_RAISED"
	StatusPendingPicking Status = "PENDING_PICKING"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusCompleted      Status = "COMPLETED"
)

// Valid indica si s es uno de los cuatro estados conocidos.
func (s Status) Valid() bool {
	switch s {
	case StatusAlertRaised, StatusPendingPicking, StatusInTransit, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus convierte el valor persistido en Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, s)
	}
	return st, nil
}

// Operation operación del flujo que produce una transición.
type Operation string

const (
	OpRaiseAlert          Operation = "raise_alert"
	OpCreateTransferOrder Operation = "create_transfer_order"
	OpDispatchShipment    Operation = "dispatch_shipment"
	OpReceiveStock        Operation = "receive_stock"
)

// Transition estado requerido (From) y estado resultante (To). From vacío = creación.
type Transition struct {
	From Status
	To   Status
}

// transitions tabla autoritativa del flujo.
var transitions = map[Operation]Transition{
	OpRaiseAlert:          {From: "", To: StatusAlertRaised},
	OpCreateTransferOrder: {From: StatusAlertRaised, To: StatusPendingPicking},
	OpDispatchShipment:    {From: StatusPendingPicking, To: StatusInTransit},
	OpReceiveStock:        {From: StatusInTransit, To: StatusCompleted},
}

// TransitionFor devuelve la transición de la operación.
func TransitionFor(op Operation) (Transition, bool) {
	t, ok := transitions[op]
	return t, ok
}

// StageEntry entrada del historial de etapas (solo se agregan, nunca se quitan).
type StageEntry struct {
	Stage     Status
	Timestamp time.Time
	Details   string
}

// ReplenishmentOrder orden de reposición: alerta de bajo stock en tienda hasta la recepción.
// Los campos descriptivos y de cantidades son inmutables después de la creación.
type ReplenishmentOrder struct {
	ReplenishmentID   string
	StoreID           string
	StoreName         string
	ProductID         string
	ProductName       string
	CurrentQuantity   int
	ReorderThreshold  int
	RequestedQuantity int
	Status            Status

	// Se asignan una sola vez en ALERT_RAISED -> PENDING_PICKING.
	TransferOrderID string
	WarehouseID     string
	WarehouseStock  *int

	// Se asigna una sola vez en PENDING_PICKING -> IN_TRANSIT.
	TrackingNumber string

	CreatedAt    time.Time
	UpdatedAt    time.Time
	StageHistory []StageEntry

	// Version control optimista; lo incrementa el repositorio en cada Update.
	Version int64
}

// MaxQuantity cota superior de cualquier cantidad (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// NewOrderParams datos de creación de la alerta.
type NewOrderParams struct {
	StoreID           string
	StoreName         string
	ProductID         string
	ProductName       string
	CurrentQuantity   int
	ReorderThreshold  int
	RequestedQuantity int
}

// Validate verifica campos obligatorios y cantidades en [0, MaxQuantity].
func (p NewOrderParams) Validate() error {
	required := []struct{ name, value string }{
		{"store_id", p.StoreID},
		{"store_name", p.StoreName},
		{"product_id", p.ProductID},
		{"product_name", p.ProductName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s es requerido", domain.ErrInvalidInput, f.name)
		}
	}
	if p.CurrentQuantity < 0 || p.ReorderThreshold < 0 || p.RequestedQuantity < 0 {
		return fmt.Errorf("%w: las cantidades no pueden ser negativas", domain.ErrInvalidInput)
	}
	if p.CurrentQuantity > MaxQuantity || p.ReorderThreshold > MaxQuantity || p.RequestedQuantity > MaxQuantity {
		return fmt.Errorf("%w: las cantidades no pueden superar %d", domain.ErrInvalidInput, MaxQuantity)
	}
	return nil
}

// Detalles de cada etapa del historial.
const (
	detailsAlertRaised   = "Low stock alert triggered by POS system"
	detailsStockReceived = "Stock received and inventory updated at store"
)

// NewReplenishmentOrder crea la orden en ALERT_RAISED con su primera entrada de historial.
func NewReplenishmentOrder(replenishmentID string, p NewOrderParams, now time.Time) (*ReplenishmentOrder, error) {
	if strings.TrimSpace(replenishmentID) == "" {
		return nil, fmt.Errorf("%w: replenishment_id vacío", domain.ErrInvalidInput)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := &ReplenishmentOrder{
		ReplenishmentID:   replenishmentID,
		StoreID:           p.StoreID,
		StoreName:         p.StoreName,
		ProductID:         p.ProductID,
		ProductName:       p.ProductName,
		CurrentQuantity:   p.CurrentQuantity,
		ReorderThreshold:  p.ReorderThreshold,
		RequestedQuantity: p.RequestedQuantity,
		CreatedAt:         now,
	}
	o.advance(StatusAlertRaised, now, detailsAlertRaised)
	return o, nil
}

// CheckTransition falla con ErrInvalidTransition si el estado actual no es el requerido por op.
func (o *ReplenishmentOrder) CheckTransition(op Operation) error {
	t, ok := TransitionFor(op)
	if !ok || t.From == "" {
		return fmt.Errorf("%w: operación %q", domain.ErrInvalidTransition, op)
	}
	if o.Status != t.From {
		return fmt.Errorf("%w: la orden está en %s, se requiere %s", domain.ErrInvalidTransition, o.Status, t.From)
	}
	return nil
}

// CheckTransferOrder valida estado y stock de bodega sin modificar la orden.
// El stock debe ser al menos la cantidad solicitada (igualdad permitida).
func (o *ReplenishmentOrder) CheckTransferOrder(warehouseID string, warehouseStock int) error {
	if err := o.CheckTransition(OpCreateTransferOrder); err != nil {
		return err
	}
	if strings.TrimSpace(warehouseID) == "" {
		return fmt.Errorf("%w: warehouse_id es requerido", domain.ErrInvalidInput)
	}
	if warehouseStock < 0 || warehouseStock > MaxQuantity {
		return fmt.Errorf("%w: warehouse_stock fuera de rango [0, %d]", domain.ErrInvalidInput, MaxQuantity)
	}
	if warehouseStock < o.RequestedQuantity {
		return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, warehouseStock, o.RequestedQuantity)
	}
	return nil
}

// AssignTransferOrder ALERT_RAISED -> PENDING_PICKING.
func (o *ReplenishmentOrder) AssignTransferOrder(transferOrderID, warehouseID string, warehouseStock int, now time.Time) error {
	if err := o.CheckTransferOrder(warehouseID, warehouseStock); err != nil {
		return err
	}
	stock := warehouseStock
	o.TransferOrderID = transferOrderID
	o.WarehouseID = warehouseID
	o.WarehouseStock = &stock
	o.advance(StatusPendingPicking, now,
		fmt.Sprintf("Transfer order %s created from warehouse %s", transferOrderID, warehouseID))
	return nil
}

// DispatchShipment PENDING_PICKING -> IN_TRANSIT.
func (o *ReplenishmentOrder) DispatchShipment(trackingNumber string, now time.Time) error {
	if err := o.CheckTransition(OpDispatchShipment); err != nil {
		return err
	}
	o.TrackingNumber = trackingNumber
	o.advance(StatusInTransit, now,
		fmt.Sprintf("Shipment dispatched with tracking number %s", trackingNumber))
	return nil
}

// ReceiveStock IN_TRANSIT -> COMPLETED.
func (o *ReplenishmentOrder) ReceiveStock(now time.Time) error {
	if err := o.CheckTransition(OpReceiveStock); err != nil {
		return err
	}
	o.advance(StatusCompleted, now, detailsStockReceived)
	return nil
}

// advance mantiene Status igual a la última etapa del historial.
func (o *ReplenishmentOrder) advance(to Status, now time.Time, details string) {
	o.Status = to
	o.UpdatedAt = now
	o.StageHistory = append(o.StageHistory, StageEntry{Stage: to, Timestamp: now, Details: details})
}

// LastStage devuelve la entrada más reciente del historial.
func (o *ReplenishmentOrder) LastStage() (StageEntry, bool) {
	if len(o.StageHistory) == 0 {
		return StageEntry{}, false
	}
	return o.StageHistory[len(o.StageHistory)-1], true
}

// Clone copia profunda (historial y punteros incluidos).
func (o *ReplenishmentOrder) Clone() *ReplenishmentOrder {
	if o == nil {
		return nil
	}
	c := *o
	if o.WarehouseStock != nil {
		stock := *o.WarehouseStock
		c.WarehouseStock = &stock
	}
	c.StageHistory = append([]StageEntry(nil), o.StageHistory...)
	return &c
}
