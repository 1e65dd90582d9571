package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// stockRepository implements StockRepository using PostgreSQL. Quantity
// changes and ledger appends always share one transaction, so the invariant
// stock_quantity == sum(ledger deltas) can never be observed broken.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

// reserveLine conditionally decrements one product inside tx. The predicate
// stock_quantity >= qty is evaluated under the row lock, so concurrent
// reservations serialise per product.
func (r *stockRepository) reserveLine(ctx context.Context, tx pgx.Tx, orderRef string, line model.StockLine) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, version = version + 1
		WHERE id = $2 AND stock_quantity >= $1
		RETURNING stock_quantity
	`

	var balance int
	err := tx.QueryRow(ctx, query, line.Quantity, line.ProductID).Scan(&balance)
	if err == pgx.ErrNoRows {
		var available int
		if scanErr := tx.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, line.ProductID).Scan(&available); scanErr != nil {
			if scanErr == pgx.ErrNoRows {
				available = 0
			} else {
				return fmt.Errorf("failed to read available stock: %w", scanErr)
			}
		}
		return &model.InsufficientStockError{
			ProductID: line.ProductID,
			Requested: line.Quantity,
			Available: available,
		}
	}
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	return r.appendEntry(ctx, tx, model.StockHistoryEntry{
		ProductID:        line.ProductID,
		Delta:            -line.Quantity,
		ResultingBalance: balance,
		Reason:           model.ReasonOrderDecrement,
		ReferenceID:      orderRef,
	})
}

// creditLine increments one product inside tx and appends a ledger entry.
func (r *stockRepository) creditLine(ctx context.Context, tx pgx.Tx, ref string, line model.StockLine, reason model.StockReason) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, version = version + 1
		WHERE id = $2
		RETURNING stock_quantity
	`

	var balance int
	err := tx.QueryRow(ctx, query, line.Quantity, line.ProductID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("product %s not found", line.ProductID)
	}
	if err != nil {
		return fmt.Errorf("failed to credit stock: %w", err)
	}

	return r.appendEntry(ctx, tx, model.StockHistoryEntry{
		ProductID:        line.ProductID,
		Delta:            line.Quantity,
		ResultingBalance: balance,
		Reason:           reason,
		ReferenceID:      ref,
	})
}

// appendEntry writes one immutable ledger row.
func (r *stockRepository) appendEntry(ctx context.Context, tx pgx.Tx, e model.StockHistoryEntry) error {
	query := `
		INSERT INTO stock_history (id, product_id, delta, resulting_balance, reason, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query, uuid.New(), e.ProductID, e.Delta, e.ResultingBalance, e.Reason, e.ReferenceID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append stock history entry: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on any error.
func (r *stockRepository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sortedLines returns a copy of the lines ordered by product ID, so
// concurrent multi-line transactions always lock product rows in the same
// order and cannot deadlock each other.
func sortedLines(lines []model.StockLine) []model.StockLine {
	out := make([]model.StockLine, len(lines))
	copy(out, lines)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// ReserveBatch decrements every line or none: a failed line rolls the whole
// transaction back, so no partial holds are ever left outstanding.
func (r *stockRepository) ReserveBatch(ctx context.Context, orderRef string, lines []model.StockLine) error {
	if len(lines) == 0 {
		return nil
	}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		for _, line := range sortedLines(lines) {
			if err := r.reserveLine(ctx, tx, orderRef, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("order_ref", orderRef).
			Int("line_count", len(lines)).
			Msg("stock reservation failed")
		return err
	}

	r.logger.Debug().
		Str("order_ref", orderRef).
		Int("line_count", len(lines)).
		Msg("stock reserved")
	return nil
}

// Release restores quantities with compensating entries referencing the
// original order.
func (r *stockRepository) Release(ctx context.Context, orderRef string, lines []model.StockLine) error {
	if len(lines) == 0 {
		return nil
	}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		for _, line := range sortedLines(lines) {
			if err := r.creditLine(ctx, tx, orderRef, line, model.ReasonOrderCancelRestock); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("order_ref", orderRef).Msg("stock release failed")
		return err
	}

	r.logger.Info().
		Str("order_ref", orderRef).
		Int("line_count", len(lines)).
		Msg("stock released")
	return nil
}

// CreditReceipt credits inbound purchase-order stock.
func (r *stockRepository) CreditReceipt(ctx context.Context, poRef string, lines []model.StockLine) error {
	if len(lines) == 0 {
		return nil
	}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		for _, line := range sortedLines(lines) {
			if err := r.creditLine(ctx, tx, poRef, line, model.ReasonPurchaseReceipt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("po_ref", poRef).Msg("stock credit failed")
		return err
	}

	r.logger.Info().
		Str("po_ref", poRef).
		Int("line_count", len(lines)).
		Msg("purchase receipt credited")
	return nil
}

// Adjust applies a signed manual correction. Negative adjustments respect
// the non-negative stock invariant.
func (r *stockRepository) Adjust(ctx context.Context, productID string, delta int, note string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE products
			SET stock_quantity = stock_quantity + $1, version = version + 1
			WHERE id = $2 AND stock_quantity + $1 >= 0
			RETURNING stock_quantity
		`

		var balance int
		err := tx.QueryRow(ctx, query, delta, productID).Scan(&balance)
		if err == pgx.ErrNoRows {
			return &model.InsufficientStockError{ProductID: productID, Requested: -delta, Available: 0}
		}
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		return r.appendEntry(ctx, tx, model.StockHistoryEntry{
			ProductID:        productID,
			Delta:            delta,
			ResultingBalance: balance,
			Reason:           model.ReasonManualAdjustment,
			ReferenceID:      note,
		})
	})
}

// History returns ledger entries matching the filter, newest first.
func (r *stockRepository) History(ctx context.Context, filter model.StockHistoryFilter) ([]model.StockHistoryEntry, error) {
	query := `
		SELECT id, product_id, delta, resulting_balance, reason, reference_id, created_at
		FROM stock_history
		WHERE ($1 = '' OR product_id = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, filter.ProductID, filter.From, filter.To, limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stock history")
		return nil, fmt.Errorf("failed to query stock history: %w", err)
	}
	defer rows.Close()

	var entries []model.StockHistoryEntry
	for rows.Next() {
		var e model.StockHistoryEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Delta, &e.ResultingBalance, &e.Reason, &e.ReferenceID, &e.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock history row")
			return nil, fmt.Errorf("failed to scan stock history: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock history rows")
		return nil, fmt.Errorf("error iterating stock history: %w", err)
	}

	return entries, nil
}

// BalanceOf returns the current stock quantity for a product.
func (r *stockRepository) BalanceOf(ctx context.Context, productID string) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, fmt.Errorf("product %s not found", productID)
		}
		return 0, fmt.Errorf("failed to read stock balance: %w", err)
	}
	return balance, nil
}
