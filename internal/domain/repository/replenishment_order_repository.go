package repository

import (
	"context"

	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

// ReplenishmentOrderRepository define el puerto de persistencia para órdenes de reposición (DIP).
// Todas las operaciones son de un solo registro.
type ReplenishmentOrderRepository interface {
	// Insert falla con domain.ErrDuplicate si el replenishment_id ya existe.
	Insert(ctx context.Context, order *entity.ReplenishmentOrder) error
	// GetByReplenishmentID devuelve (nil, nil) si no existe.
	GetByReplenishmentID(ctx context.Context, replenishmentID string) (*entity.ReplenishmentOrder, error)
	// Update reemplaza el registro completo si order.Version coincide con la versión guardada,
	// e incrementa order.Version. Falla con domain.ErrNotFound si la clave no existe y con
	// domain.ErrConcurrentUpdate si otra escritura ganó.
	Update(ctx context.Context, order *entity.ReplenishmentOrder) error
	// ListAll devuelve todas las órdenes por created_at descendente.
	ListAll(ctx context.Context) ([]*entity.ReplenishmentOrder, error)
}
