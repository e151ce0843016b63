package replenishment

// Channels nombres de canal, uno por transición.
type Channels struct {
	AlertRaised          string
	TransferOrderCreated string
	ShipmentDispatched   string
	StockReceived        string
}

// DefaultChannels canales por defecto.
func DefaultChannels() Channels {
	return Channels{
		AlertRaised:          "replenishment.alert-raised",
		TransferOrderCreated: "replenishment.transfer-order-created",
		ShipmentDispatched:   "replenishment.shipment-dispatched",
		StockReceived:        "replenishment.stock-received",
	}
}

// AlertRaisedEvent se publica al crear la orden.
type AlertRaisedEvent struct {
	ReplenishmentID   string `json:"replenishment_id"`
	StoreID           string `json:"store_id"`
	ProductID         string `json:"product_id"`
	RequestedQuantity int    `json:"requested_quantity"`
}

// TransferOrderCreatedEvent se publica en ALERT_RAISED -> PENDING_PICKING.
type TransferOrderCreatedEvent struct {
	ReplenishmentID string `json:"replenishment_id"`
	TransferOrderID string `json:"transfer_order_id"`
	WarehouseID     string `json:"warehouse_id"`
	Quantity        int    `json:"quantity"`
}

// ShipmentDispatchedEvent se publica en PENDING_PICKING -> IN_TRANSIT.
type ShipmentDispatchedEvent struct {
	ReplenishmentID string `json:"replenishment_id"`
	TrackingNumber  string `json:"tracking_number"`
	StoreID         string `json:"store_id"`
}

// StockReceivedEvent se publica en IN_TRANSIT -> COMPLETED.
type StockReceivedEvent struct {
	ReplenishmentID  string `json:"replenishment_id"`
	StoreID          string `json:"store_id"`
	ProductID        string `json:"product_id"`
	QuantityReceived int    `json:"quantity_received"`
}
