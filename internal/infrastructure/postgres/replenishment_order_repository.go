package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
	"github.com/jhoicas/replenishment-api/internal/domain/repository"
)

var _ repository.ReplenishmentOrderRepository = (*ReplenishmentOrderRepo)(nil)

// ReplenishmentOrderRepo implementación de ReplenishmentOrderRepository sobre PostgreSQL.
// El historial de etapas se guarda como JSONB en la misma fila.
type ReplenishmentOrderRepo struct {
	q Querier
}

// NewReplenishmentOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReplenishmentOrderRepository(q Querier) *ReplenishmentOrderRepo {
	return &ReplenishmentOrderRepo{q: q}
}

const selectReplenishmentOrder = `
	SELECT replenishment_id, store_id, store_name, product_id, product_name,
	       current_quantity, reorder_threshold, requested_quantity, status,
	       transfer_order_id, warehouse_id, warehouse_stock, tracking_number,
	       stage_history, version, created_at, updated_at
	FROM replenishment_orders`

// stageRow forma JSON de una entrada de stage_history.
type stageRow struct {
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// Insert persiste una nueva orden con version = 1.
func (r *ReplenishmentOrderRepo) Insert(ctx context.Context, o *entity.ReplenishmentOrder) error {
	history, err := encodeHistory(o.StageHistory)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO replenishment_orders (
			replenishment_id, store_id, store_name, product_id, product_name,
			current_quantity, reorder_threshold, requested_quantity, status,
			transfer_order_id, warehouse_id, warehouse_stock, tracking_number,
			stage_history, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		o.ReplenishmentID, o.StoreID, o.StoreName, o.ProductID, o.ProductName,
		o.CurrentQuantity, o.ReorderThreshold, o.RequestedQuantity, string(o.Status),
		nullText(o.TransferOrderID), nullText(o.WarehouseID), nullInt(o.WarehouseStock), nullText(o.TrackingNumber),
		history, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert replenishment order %s: %w", o.ReplenishmentID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert replenishment order: %w", err)
	}
	o.Version = 1
	return nil
}

// GetByReplenishmentID obtiene una orden por su clave de negocio. (nil, nil) si no existe.
func (r *ReplenishmentOrderRepo) GetByReplenishmentID(ctx context.Context, replenishmentID string) (*entity.ReplenishmentOrder, error) {
	row := r.q.QueryRow(ctx, selectReplenishmentOrder+` WHERE replenishment_id = $1`, replenishmentID)
	o, err := scanReplenishmentOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get replenishment order: %w", err)
	}
	return o, nil
}

// Update reemplaza el registro completo condicionado a la versión leída.
func (r *ReplenishmentOrderRepo) Update(ctx context.Context, o *entity.ReplenishmentOrder) error {
	history, err := encodeHistory(o.StageHistory)
	if err != nil {
		return err
	}
	query := `
		UPDATE replenishment_orders SET
			store_id = $2, store_name = $3, product_id = $4, product_name = $5,
			current_quantity = $6, reorder_threshold = $7, requested_quantity = $8, status = $9,
			transfer_order_id = $10, warehouse_id = $11, warehouse_stock = $12, tracking_number = $13,
			stage_history = $14, updated_at = $15, version = version + 1
		WHERE replenishment_id = $1 AND version = $16`
	cmd, err := r.q.Exec(ctx, query,
		o.ReplenishmentID, o.StoreID, o.StoreName, o.ProductID, o.ProductName,
		o.CurrentQuantity, o.ReorderThreshold, o.RequestedQuantity, string(o.Status),
		nullText(o.TransferOrderID), nullText(o.WarehouseID), nullInt(o.WarehouseStock), nullText(o.TrackingNumber),
		history, o.UpdatedAt, o.Version,
	)
	if err != nil {
		return fmt.Errorf("update replenishment order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM replenishment_orders WHERE replenishment_id = $1)`,
			o.ReplenishmentID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("update replenishment order: %w", err)
		}
		if !exists {
			return fmt.Errorf("update replenishment order %s: %w", o.ReplenishmentID, domain.ErrNotFound)
		}
		return fmt.Errorf("update replenishment order %s: %w", o.ReplenishmentID, domain.ErrConcurrentUpdate)
	}
	o.Version++
	return nil
}

// orderByRecent mismo orden que el repositorio en memoria: empates de created_at por replenishment_id.
const orderByRecent = ` ORDER BY created_at DESC, replenishment_id DESC`

// ListAll lista todas las órdenes, las más recientes primero.
func (r *ReplenishmentOrderRepo) ListAll(ctx context.Context) ([]*entity.ReplenishmentOrder, error) {
	rows, err := r.q.Query(ctx, selectReplenishmentOrder+orderByRecent)
	if err != nil {
		return nil, fmt.Errorf("list replenishment orders: %w", err)
	}
	defer rows.Close()
	list := []*entity.ReplenishmentOrder{}
	for rows.Next() {
		o, err := scanReplenishmentOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan replenishment order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanReplenishmentOrder(row pgx.Row) (*entity.ReplenishmentOrder, error) {
	var (
		o               entity.ReplenishmentOrder
		status          string
		transferOrderID pgtype.Text
		warehouseID     pgtype.Text
		warehouseStock  pgtype.Int4
		trackingNumber  pgtype.Text
		history         []byte
	)
	err := row.Scan(
		&o.ReplenishmentID, &o.StoreID, &o.StoreName, &o.ProductID, &o.ProductName,
		&o.CurrentQuantity, &o.ReorderThreshold, &o.RequestedQuantity, &status,
		&transferOrderID, &warehouseID, &warehouseStock, &trackingNumber,
		&history, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.Status, err = entity.ParseStatus(status); err != nil {
		return nil, err
	}
	o.TransferOrderID = transferOrderID.String
	o.WarehouseID = warehouseID.String
	o.TrackingNumber = trackingNumber.String
	if warehouseStock.Valid {
		stock := int(warehouseStock.Int32)
		o.WarehouseStock = &stock
	}
	if o.StageHistory, err = decodeHistory(history); err != nil {
		return nil, err
	}
	return &o, nil
}

func encodeHistory(history []entity.StageEntry) ([]byte, error) {
	rows := make([]stageRow, 0, len(history))
	for _, h := range history {
		rows = append(rows, stageRow{Stage: string(h.Stage), Timestamp: h.Timestamp.UTC(), Details: h.Details})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode stage_history: %w", err)
	}
	return data, nil
}

func decodeHistory(data []byte) ([]entity.StageEntry, error) {
	var rows []stageRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode stage_history: %w", err)
	}
	history := make([]entity.StageEntry, 0, len(rows))
	for _, r := range rows {
		stage, err := entity.ParseStatus(r.Stage)
		if err != nil {
			return nil, err
		}
		history = append(history, entity.StageEntry{Stage: stage, Timestamp: r.Timestamp, Details: r.Details})
	}
	return history, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func nullInt(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}
