package service

import (
	"context"
	"time"

	"kart-checkout/internal/config"
	"kart-checkout/internal/events"
	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/rs/zerolog"
)

// Sweeper periodically cancels orders stuck in PENDING_PAYMENT past the
// configured timeout and releases their held stock with compensating ledger
// entries referencing the original order.
type Sweeper struct {
	orderRepo repository.OrderRepository
	stockRepo repository.StockRepository
	publisher events.Publisher
	cfg       config.SweepConfig
	logger    zerolog.Logger
}

// NewSweeper creates the reconciliation sweep.
func NewSweeper(
	orderRepo repository.OrderRepository,
	stockRepo repository.StockRepository,
	publisher events.Publisher,
	cfg config.SweepConfig,
	logger zerolog.Logger,
) *Sweeper {
	return &Sweeper{
		orderRepo: orderRepo,
		stockRepo: stockRepo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("component", "sweeper").Logger(),
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Dur("pending_timeout", s.cfg.PendingTimeout).
		Msg("reconciliation sweep started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reconciliation sweep stopped")
			return
		case <-ticker.C:
			if swept, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweep pass failed")
			} else if swept > 0 {
				s.logger.Info().Int("swept", swept).Msg("sweep pass completed")
			}
		}
	}
}

// SweepOnce cancels one bounded batch of stale orders. Returns how many
// orders were swept.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cfg.PendingTimeout)

	stale, err := s.orderRepo.ListStalePending(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, order := range stale {
		// The guarded transition loses cleanly to a concurrent payment
		// callback: whoever flips the status owns the compensation.
		updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderPendingPayment, model.OrderCancelled, order.PaymentStatus)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to cancel stale order")
			continue
		}
		if !updated {
			continue
		}

		_, items, err := s.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to load items for swept order")
			continue
		}

		if err := s.stockRepo.Release(ctx, order.ID.String(), itemStockLines(items)); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to release stock for swept order")
			continue
		}

		s.publisher.Publish(ctx, events.TypeStockSwept, order.ID.String(), map[string]any{
			"orderNumber": order.OrderNumber,
		})
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Msg("stale pending order swept")
		swept++
	}

	return swept, nil
}
