package service

import (
	"context"

	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/rs/zerolog"
)

// stockService implements StockService.
type stockService struct {
	stockRepo repository.StockRepository
	logger    zerolog.Logger
}

// NewStockService creates the ledger read/adjust service.
func NewStockService(stockRepo repository.StockRepository, logger zerolog.Logger) StockService {
	return &stockService{
		stockRepo: stockRepo,
		logger:    logger.With().Str("service", "stock").Logger(),
	}
}

// History returns ledger entries matching the filter, newest first.
func (s *stockService) History(ctx context.Context, filter model.StockHistoryFilter) ([]model.StockHistoryEntry, error) {
	return s.stockRepo.History(ctx, filter)
}

// Adjust applies a signed manual stock correction.
func (s *stockService) Adjust(ctx context.Context, productID string, delta int, note string) error {
	if delta == 0 {
		return model.NewDomainError(model.ErrCodeValidation, "delta must be non-zero")
	}

	if err := s.stockRepo.Adjust(ctx, productID, delta, note); err != nil {
		return err
	}

	s.logger.Info().
		Str("product_id", productID).
		Int("delta", delta).
		Str("note", note).
		Msg("manual stock adjustment")
	return nil
}
