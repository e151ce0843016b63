// Package memory implementa los repositorios en memoria (STORE_DRIVER=memory y tests).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

var _ repository.ReplenishmentOrderRepository = (*ReplenishmentOrderRepo)(nil)

// ReplenishmentOrderRepo guarda copias de las órdenes; nadie fuera del repo comparte memoria con él.
type ReplenishmentOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*entity.ReplenishmentOrder
}

// NewReplenishmentOrderRepository construye el repositorio vacío.
func NewReplenishmentOrderRepository() *ReplenishmentOrderRepo {
	return &ReplenishmentOrderRepo{orders: make(map[string]*entity.ReplenishmentOrder)}
}

// Insert persiste una nueva orden.
func (r *ReplenishmentOrderRepo) Insert(_ context.Context, order *entity.ReplenishmentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ReplenishmentID]; ok {
		return fmt.Errorf("insert replenishment order %s: %w", order.ReplenishmentID, domain.ErrDuplicate)
	}
	order.Version = 1
	r.orders[order.ReplenishmentID] = order.Clone()
	return nil
}

// GetByReplenishmentID obtiene una orden por su clave de negocio.
func (r *ReplenishmentOrderRepo) GetByReplenishmentID(_ context.Context, replenishmentID string) (*entity.ReplenishmentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[replenishmentID]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

// Update reemplaza la orden si la versión coincide.
func (r *ReplenishmentOrderRepo) Update(_ context.Context, order *entity.ReplenishmentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[order.ReplenishmentID]
	if !ok {
		return fmt.Errorf("update replenishment order %s: %w", order.ReplenishmentID, domain.ErrNotFound)
	}
	if current.Version != order.Version {
		return fmt.Errorf("update replenishment order %s: %w", order.ReplenishmentID, domain.ErrConcurrentUpdate)
	}
	order.Version++
	r.orders[order.ReplenishmentID] = order.Clone()
	return nil
}

// ListAll devuelve las órdenes por created_at descendente (desempate por clave).
func (r *ReplenishmentOrderRepo) ListAll(_ context.Context) ([]*entity.ReplenishmentOrder, error) {
	r.mu.RLock()
	list := make([]*entity.ReplenishmentOrder, 0, len(r.orders))
	for _, o := range r.orders {
		list = append(list, o.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ReplenishmentID > list[j].ReplenishmentID
	})
	return list, nil
}
