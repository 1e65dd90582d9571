package repository

import (
	"context"
	"fmt"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements CouponRepository using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves an active coupon by its code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, min_subtotal,
		       valid_from, valid_to, usage_limit, usage_count, active
		FROM coupons
		WHERE code = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinSubtotal,
		&c.ValidFrom,
		&c.ValidTo,
		&c.UsageLimit,
		&c.UsageCount,
		&c.Active,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// IncrementUsage consumes one redemption slot in a single conditional
// statement. Two concurrent callers racing for the last slot cannot both
// succeed: the row predicate is evaluated under the row lock.
func (r *couponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1
		WHERE id = $1 AND usage_count < usage_limit
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to increment coupon usage")
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("coupon_id", id.String()).Msg("coupon redemption slots exhausted")
		return &model.CouponInvalidError{Code: id.String(), Reason: model.CouponExhausted}
	}

	r.logger.Debug().Str("coupon_id", id.String()).Msg("coupon usage incremented")
	return nil
}
