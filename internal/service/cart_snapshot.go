package service

import (
	"context"
	"fmt"
	"time"

	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart snapshot builder.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// BuildSnapshot re-reads every cart line's product and locks in its current
// effective price. Missing or archived products are dropped with an
// adjustment; price drift against the cart's last-seen price is flagged but
// does not block checkout.
func (s *cartService) BuildSnapshot(ctx context.Context, userID string) (*model.CartSnapshot, error) {
	lines, err := s.cartRepo.GetLines(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load cart lines")
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}

	snapshot := &model.CartSnapshot{
		UserID:     userID,
		CapturedAt: time.Now(),
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Quantity > 0 {
			ids = append(ids, line.ProductID)
		}
	}

	byID := make(map[string]*model.Product, len(ids))
	if len(ids) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart products: %w", err)
		}
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}

		product := byID[line.ProductID]
		if product == nil || product.Archived {
			s.logger.Debug().
				Str("user_id", userID).
				Str("product_id", line.ProductID).
				Msg("dropping unavailable cart line")
			snapshot.Adjustments = append(snapshot.Adjustments, model.CartAdjustment{
				ProductID: line.ProductID,
				Kind:      model.AdjustmentItemRemoved,
			})
			continue
		}

		price := product.EffectivePrice()
		if !price.Equal(line.SeenPrice) {
			snapshot.Adjustments = append(snapshot.Adjustments, model.CartAdjustment{
				ProductID: line.ProductID,
				Kind:      model.AdjustmentPriceChanged,
				OldPrice:  line.SeenPrice,
				NewPrice:  price,
			})
		}

		snapshot.Lines = append(snapshot.Lines, model.SnapshotLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   price,
		})
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("line_count", len(snapshot.Lines)).
		Int("adjustment_count", len(snapshot.Adjustments)).
		Msg("cart snapshot built")

	return snapshot, nil
}
