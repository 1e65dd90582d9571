package service

import (
	"context"
	"fmt"
	"time"

	"kart-checkout/internal/events"
	"kart-checkout/internal/model"
	"kart-checkout/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// purchaseOrderService implements PurchaseOrderService.
type purchaseOrderService struct {
	poRepo    repository.PurchaseOrderRepository
	stockRepo repository.StockRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewPurchaseOrderService creates the receiving state machine.
func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	stockRepo repository.StockRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:    poRepo,
		stockRepo: stockRepo,
		publisher: publisher,
		logger:    logger.With().Str("service", "purchase_order").Logger(),
	}
}

// Advance transitions a purchase order. PENDING -> ORDERED -> RECEIVED, or
// CANCELLED from either non-terminal state. Receiving credits stock exactly
// once; a repeated RECEIVED attempt is a no-op.
func (s *purchaseOrderService) Advance(ctx context.Context, poID uuid.UUID, target model.PurchaseOrderStatus) (*model.PurchaseOrder, error) {
	if !target.Valid() {
		return nil, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("unknown purchase order status %q", target))
	}

	po, items, err := s.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}
	if po == nil {
		return nil, model.ErrPurchaseOrderNotFound
	}

	// Idempotent receive: the work already happened, report success.
	if po.Status == model.PurchaseOrderReceived && target == model.PurchaseOrderReceived {
		s.logger.Debug().Str("po_id", poID.String()).Msg("repeated receive ignored")
		return po, nil
	}

	if !po.Status.CanTransitionTo(target) {
		return nil, &model.InvalidTransitionError{From: string(po.Status), To: string(target)}
	}

	if target == model.PurchaseOrderReceived {
		return s.receive(ctx, po, items)
	}

	updated, err := s.poRepo.UpdateStatus(ctx, poID, po.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, model.ErrConcurrencyConflict
	}

	po.Status = target
	s.logger.Info().
		Str("po_id", poID.String()).
		Str("status", string(target)).
		Msg("purchase order advanced")
	return po, nil
}

// receive flips the order to RECEIVED and credits each line's stock with one
// PURCHASE_RECEIPT entry. The received_at guard in MarkReceived makes the
// flip single-shot, so the credit can never run twice.
func (s *purchaseOrderService) receive(ctx context.Context, po *model.PurchaseOrder, items []model.PurchaseOrderItem) (*model.PurchaseOrder, error) {
	now := time.Now()

	flipped, err := s.poRepo.MarkReceived(ctx, po.ID, now)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// A concurrent receive won the guard; its credit covers the stock.
		s.logger.Debug().Str("po_id", po.ID.String()).Msg("receive lost guard race, treating as no-op")
		po.Status = model.PurchaseOrderReceived
		po.ReceivedAt = &now
		return po, nil
	}

	lines := make([]model.StockLine, len(items))
	for i, it := range items {
		lines[i] = model.StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	if err := s.stockRepo.CreditReceipt(ctx, po.ID.String(), lines); err != nil {
		// The flip is durable but the credit is not: surface the error so an
		// operator reconciles via manual adjustment.
		s.logger.Error().Err(err).Str("po_id", po.ID.String()).Msg("stock credit failed after receive")
		return nil, err
	}

	po.Status = model.PurchaseOrderReceived
	po.ReceivedAt = &now

	s.publisher.Publish(ctx, events.TypePurchaseOrderReceived, po.ID.String(), map[string]any{
		"lineCount": len(lines),
	})
	s.logger.Info().
		Str("po_id", po.ID.String()).
		Int("line_count", len(lines)).
		Msg("purchase order received, stock credited")
	return po, nil
}
