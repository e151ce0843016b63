package dto

import "time"

// CreateAlertRequest entrada para levantar una alerta de bajo stock (POS de la tienda).
type CreateAlertRequest struct {
	StoreID           string `json:"store_id" validate:"required,max=100"`
	StoreName         string `json:"store_name" validate:"required,max=200"`
	ProductID         string `json:"product_id" validate:"required,max=100"`
	ProductName       string `json:"product_name" validate:"required,max=200"`
	CurrentQuantity   *int   `json:"current_quantity" validate:"required,min=0,max=2147483647"`
	ReorderThreshold  *int   `json:"reorder_threshold" validate:"required,min=0,max=2147483647"`
	RequestedQuantity *int   `json:"requested_quantity" validate:"required,min=0,max=2147483647"`
}

// CreateTransferOrderRequest entrada para crear la orden de traslado desde bodega.
type CreateTransferOrderRequest struct {
	WarehouseID    string `json:"warehouse_id" validate:"required,max=100"`
	WarehouseStock *int   `json:"warehouse_stock" validate:"required,min=0,max=2147483647"`
}

// StageEntryResponse entrada del historial de etapas.
type StageEntryResponse struct {
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// ReplenishmentOrderResponse salida de una orden de reposición.
type ReplenishmentOrderResponse struct {
	ReplenishmentID   string               `json:"replenishment_id"`
	StoreID           string               `json:"store_id"`
	StoreName         string               `json:"store_name"`
	ProductID         string               `json:"product_id"`
	ProductName       string               `json:"product_name"`
	CurrentQuantity   int                  `json:"current_quantity"`
	ReorderThreshold  int                  `json:"reorder_threshold"`
	RequestedQuantity int                  `json:"requested_quantity"`
	Status            string               `json:"status"`
	TransferOrderID   string               `json:"transfer_order_id,omitempty"`
	WarehouseID       string               `json:"warehouse_id,omitempty"`
	WarehouseStock    *int                 `json:"warehouse_stock,omitempty"`
	TrackingNumber    string               `json:"tracking_number,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	StageHistory      []StageEntryResponse `json:"stage_history"`
}
