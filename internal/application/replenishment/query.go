package replenishment

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre las órdenes de reposición.
type QueryUseCase struct {
	repo repository.ReplenishmentOrderRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(repo repository.ReplenishmentOrderRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

// ListAll lista todas las órdenes, las más recientes primero.
func (uc *QueryUseCase) ListAll(ctx context.Context) ([]dto.ReplenishmentOrderResponse, error) {
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReplenishmentOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToReplenishmentOrderResponse(o))
	}
	return items, nil
}

// GetByID obtiene una orden por replenishment_id. Devuelve (nil, nil) si no existe.
func (uc *QueryUseCase) GetByID(ctx context.Context, replenishmentID string) (*dto.ReplenishmentOrderResponse, error) {
	order, err := uc.repo.GetByReplenishmentID(ctx, replenishmentID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	return ToReplenishmentOrderResponse(order), nil
}

// ToReplenishmentOrderResponse convierte la entidad al DTO de salida.
func ToReplenishmentOrderResponse(o *entity.ReplenishmentOrder) *dto.ReplenishmentOrderResponse {
	if o == nil {
		return nil
	}
	history := make([]dto.StageEntryResponse, 0, len(o.StageHistory))
	for _, h := range o.StageHistory {
		history = append(history, dto.StageEntryResponse{
			Stage:     string(h.Stage),
			Timestamp: h.Timestamp,
			Details:   h.Details,
		})
	}
	var stock *int
	if o.WarehouseStock != nil {
		v := *o.WarehouseStock
		stock = &v
	}
	return &dto.ReplenishmentOrderResponse{
		ReplenishmentID:   o.ReplenishmentID,
		StoreID:           o.StoreID,
		StoreName:         o.StoreName,
		ProductID:         o.ProductID,
		ProductName:       o.ProductName,
		CurrentQuantity:   o.CurrentQuantity,
		ReorderThreshold:  o.ReorderThreshold,
		RequestedQuantity: o.RequestedQuantity,
		Status:            string(o.Status),
		TransferOrderID:   o.TransferOrderID,
		WarehouseID:       o.WarehouseID,
		WarehouseStock:    stock,
		TrackingNumber:    o.TrackingNumber,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		StageHistory:      history,
	}
}
