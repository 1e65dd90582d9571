package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon validator.
func NewCouponService(couponRepo repository.CouponRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

// Validate checks a code without consuming a redemption slot. The atomic
// usage increment happens later, in the checkout commit phase, so abandoned
// checkouts never hold phantom redemptions.
func (s *couponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}

	if coupon == nil || !coupon.Active {
		s.logger.Debug().Str("code", code).Msg("coupon not found or inactive")
		return nil, &model.CouponInvalidError{Code: code, Reason: model.CouponNotFound}
	}

	if now.Before(coupon.ValidFrom) {
		return nil, &model.CouponInvalidError{Code: code, Reason: model.CouponNotYetActive}
	}

	if now.After(coupon.ValidTo) {
		return nil, &model.CouponInvalidError{Code: code, Reason: model.CouponExpired}
	}

	if coupon.Exhausted() {
		return nil, &model.CouponInvalidError{Code: code, Reason: model.CouponExhausted}
	}

	if coupon.MinSubtotal != nil && subtotal.LessThan(*coupon.MinSubtotal) {
		return nil, &model.CouponInvalidError{Code: code, Reason: model.CouponMinSubtotal}
	}

	s.logger.Debug().
		Str("code", code).
		Str("discount_type", string(coupon.DiscountType)).
		Msg("coupon validated")

	return coupon, nil
}

// Preview returns the discount a code would grant on the given subtotal.
// Invalid coupons yield a negative preview carrying the rejection reason
// rather than an error, so the endpoint answers uniformly.
func (s *couponService) Preview(ctx context.Context, code string, subtotal decimal.Decimal) (*CouponPreview, error) {
	coupon, err := s.Validate(ctx, code, subtotal, time.Now())
	if err != nil {
		var invalid *model.CouponInvalidError
		if errors.As(err, &invalid) {
			return &CouponPreview{Valid: false, Discount: decimal.Zero, Reason: invalid.Reason}, nil
		}
		return nil, err
	}

	return &CouponPreview{
		Valid:    true,
		Discount: coupon.Discount(subtotal),
	}, nil
}
