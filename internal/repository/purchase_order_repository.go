package repository

import (
	"context"
	"fmt"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// purchaseOrderRepository implements PurchaseOrderRepository using PostgreSQL.
type purchaseOrderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPurchaseOrderRepository creates a new PostgreSQL-backed purchase order repository.
func NewPurchaseOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) PurchaseOrderRepository {
	return &purchaseOrderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "purchase_order").Logger(),
	}
}

// GetByID retrieves a purchase order with its items.
func (r *purchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, []model.PurchaseOrderItem, error) {
	query := `
		SELECT id, supplier_id, status, total_amount, received_at, created_at, updated_at
		FROM purchase_orders
		WHERE id = $1
	`

	var po model.PurchaseOrder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&po.ID,
		&po.SupplierID,
		&po.Status,
		&po.TotalAmount,
		&po.ReceivedAt,
		&po.CreatedAt,
		&po.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("po_id", id.String()).Msg("purchase order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("po_id", id.String()).Msg("failed to query purchase order")
		return nil, nil, fmt.Errorf("failed to query purchase order: %w", err)
	}

	itemsQuery := `
		SELECT id, purchase_order_id, product_id, quantity, unit_cost
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("po_id", id.String()).Msg("failed to query purchase order items")
		return nil, nil, fmt.Errorf("failed to query purchase order items: %w", err)
	}
	defer rows.Close()

	var items []model.PurchaseOrderItem
	for rows.Next() {
		var item model.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.Quantity, &item.UnitCost); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan purchase order item row")
			return nil, nil, fmt.Errorf("failed to scan purchase order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating purchase order item rows")
		return nil, nil, fmt.Errorf("error iterating purchase order items: %w", err)
	}

	return &po, items, nil
}

// UpdateStatus transitions the status guarded by the expected current status.
func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.PurchaseOrderStatus) (bool, error) {
	query := `
		UPDATE purchase_orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	tag, err := r.pool.Exec(ctx, query, to, time.Now(), id, from)
	if err != nil {
		r.logger.Error().Err(err).Str("po_id", id.String()).Msg("failed to update purchase order status")
		return false, fmt.Errorf("failed to update purchase order status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkReceived flips the order to RECEIVED exactly once. The received_at IS
// NULL predicate is the idempotence guard against double crediting stock.
func (r *purchaseOrderRepository) MarkReceived(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE purchase_orders
		SET status = $1, received_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4 AND received_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, model.PurchaseOrderReceived, at, id, model.PurchaseOrderOrdered)
	if err != nil {
		r.logger.Error().Err(err).Str("po_id", id.String()).Msg("failed to mark purchase order received")
		return false, fmt.Errorf("failed to mark purchase order received: %w", err)
	}

	received := tag.RowsAffected() > 0
	r.logger.Debug().
		Str("po_id", id.String()).
		Bool("received", received).
		Msg("purchase order receive attempt")
	return received, nil
}
