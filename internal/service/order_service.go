package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kart-checkout/internal/events"
	"kart-checkout/internal/model"
	"kart-checkout/internal/payment"
	"kart-checkout/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService as a saga with explicit
// compensation at every failure boundary. No database transaction ever spans
// the external gateway call.
type checkoutService struct {
	orderRepo    repository.OrderRepository
	couponRepo   repository.CouponRepository
	stockRepo    repository.StockRepository
	cartRepo     repository.CartRepository
	addressRepo  repository.AddressRepository
	shippingRepo repository.ShippingMethodRepository
	carts        CartService
	coupons      CouponService
	gateway      payment.Gateway
	publisher    events.Publisher
	logger       zerolog.Logger
}

// NewCheckoutService creates the order orchestrator.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	stockRepo repository.StockRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	shippingRepo repository.ShippingMethodRepository,
	carts CartService,
	coupons CouponService,
	gateway payment.Gateway,
	publisher events.Publisher,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:    orderRepo,
		couponRepo:   couponRepo,
		stockRepo:    stockRepo,
		cartRepo:     cartRepo,
		addressRepo:  addressRepo,
		shippingRepo: shippingRepo,
		carts:        carts,
		coupons:      coupons,
		gateway:      gateway,
		publisher:    publisher,
		logger:       logger.With().Str("service", "checkout").Logger(),
	}
}

// newOrderNumber derives a human-facing order number from the order ID.
func newOrderNumber(id uuid.UUID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), short)
}

// stockLines converts snapshot lines into reservation lines.
func stockLines(lines []model.SnapshotLine) []model.StockLine {
	out := make([]model.StockLine, len(lines))
	for i, l := range lines {
		out[i] = model.StockLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out
}

// itemStockLines converts persisted order items into release lines.
func itemStockLines(items []model.OrderItem) []model.StockLine {
	out := make([]model.StockLine, len(items))
	for i, it := range items {
		out[i] = model.StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

// CreateOrder runs the checkout saga:
// snapshot -> coupon validate -> totals -> reserve stock -> persist order ->
// consume coupon slot -> clear cart -> payment session.
func (s *checkoutService) CreateOrder(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := s.validateRequest(userID, req); err != nil {
		return nil, err
	}

	snapshot, err := s.carts.BuildSnapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build cart snapshot: %w", err)
	}
	if len(snapshot.Lines) == 0 {
		s.logger.Warn().Str("user_id", userID).Msg("checkout with no purchasable cart lines")
		return nil, model.ErrEmptyCart
	}

	address, err := s.addressRepo.GetByID(ctx, req.AddressID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address: %w", err)
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}

	method, err := s.shippingRepo.GetByID(ctx, req.ShippingMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shipping method: %w", err)
	}
	if method == nil {
		return nil, model.ErrShippingMethodNotFound
	}

	subtotal := snapshot.Subtotal()

	var coupon *model.Coupon
	discount := decimal.Zero
	if req.CouponCode != nil && *req.CouponCode != "" {
		coupon, err = s.coupons.Validate(ctx, *req.CouponCode, subtotal, time.Now())
		if err != nil {
			s.logger.Warn().
				Str("user_id", userID).
				Str("coupon_code", *req.CouponCode).
				Err(err).
				Msg("coupon rejected at checkout")
			return nil, err
		}
		discount = coupon.Discount(subtotal)
	}

	// total = max(0, subtotal - discount) + shipping, always recomputed here
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Add(method.Cost)

	now := time.Now()
	orderID := uuid.New()
	order := &model.Order{
		ID:               orderID,
		OrderNumber:      newOrderNumber(orderID, now),
		UserID:           userID,
		AddressID:        address.ID,
		ShippingMethodID: method.ID,
		Subtotal:         subtotal,
		Discount:         discount,
		ShippingCost:     method.Cost,
		Total:            total,
		Status:           model.OrderPendingPayment,
		PaymentStatus:    model.PaymentUnpaid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
	}

	items := make([]model.OrderItem, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		}
	}

	lines := stockLines(snapshot.Lines)
	orderRef := orderID.String()

	// All-or-nothing reservation: a failed batch leaves no partial holds.
	if err := s.stockRepo.ReserveBatch(ctx, orderRef, lines); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		s.compensateStock(ctx, orderRef, lines, "order persist failed")
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if coupon != nil {
		if err := s.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
			// A coupon race must never leave stock silently held: cancel the
			// order and put the stock back before surfacing the failure.
			s.logger.Warn().
				Str("order_id", orderRef).
				Str("coupon_id", coupon.ID.String()).
				Err(err).
				Msg("coupon slot lost after reservation, compensating")
			flipped, cErr := s.orderRepo.UpdateStatus(ctx, orderID, model.OrderPendingPayment, model.OrderCancelled, model.PaymentUnpaid)
			switch {
			case cErr != nil:
				// The order is still PENDING_PAYMENT, so the sweep will
				// cancel and release it as one guarded unit. Releasing here
				// too would restock the same units twice.
				s.logger.Error().Err(cErr).Str("order_id", orderRef).Msg("failed to cancel order during compensation, leaving release to the sweep")
			case !flipped:
				// Whoever won the flip owns the release.
				s.logger.Warn().Str("order_id", orderRef).Msg("lost cancel flip during compensation")
			default:
				s.compensateStock(ctx, orderRef, lines, "coupon increment failed")
			}
			return nil, err
		}
	}

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		// The order is durable; a lingering cart is an annoyance, not a
		// correctness problem.
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart after checkout")
	}

	s.publisher.Publish(ctx, events.TypeOrderCreated, orderRef, map[string]any{
		"orderNumber": order.OrderNumber,
		"userId":      userID,
		"total":       total,
	})

	session, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		Reference: orderRef,
		Amount:    total,
	})
	if err != nil {
		// The order stays PENDING_PAYMENT; the caller retries the session
		// against the same order instead of re-reserving stock.
		s.logger.Warn().Err(err).Str("order_id", orderRef).Msg("payment session unavailable, order kept pending")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderRef).
		Str("order_number", order.OrderNumber).
		Str("total", total.String()).
		Int("item_count", len(items)).
		Msg("order created")

	return &model.CheckoutResponse{
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		Total:       total,
		PaymentURL:  session.RedirectURL,
		Adjustments: snapshot.Adjustments,
	}, nil
}

// RetryPayment opens a new payment session for an existing PENDING_PAYMENT
// order. The order ID stays the idempotency key towards the gateway.
func (s *checkoutService) RetryPayment(ctx context.Context, orderID uuid.UUID, userID string) (*model.CheckoutResponse, error) {
	order, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	if order.Status != model.OrderPendingPayment || order.PaymentStatus != model.PaymentUnpaid {
		return nil, &model.InvalidTransitionError{From: string(order.Status), To: string(model.OrderPendingPayment)}
	}

	session, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		Reference: order.ID.String(),
		Amount:    order.Total,
	})
	if err != nil {
		return nil, err
	}

	return &model.CheckoutResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		PaymentURL:  session.RedirectURL,
	}, nil
}

// HandlePaymentCallback applies a gateway confirmation. Replays of an
// already-applied confirmation are no-ops.
func (s *checkoutService) HandlePaymentCallback(ctx context.Context, notif model.PaymentNotification) error {
	order, items, err := s.orderRepo.GetByID(ctx, notif.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	switch notif.Status {
	case model.NotificationSettled:
		if order.PaymentStatus == model.PaymentPaid {
			s.logger.Debug().Str("order_id", order.ID.String()).Msg("duplicate settlement callback ignored")
			return nil
		}

		updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderPendingPayment, model.OrderProcessing, model.PaymentPaid)
		if err != nil {
			return err
		}
		if !updated {
			// Lost the race against a replay or the sweep. A settled payment
			// for a swept order needs operator attention (refund path).
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("status", string(order.Status)).
				Msg("settlement callback found order no longer pending")
			return nil
		}

		s.publisher.Publish(ctx, events.TypeOrderPaid, order.ID.String(), nil)
		s.logger.Info().Str("order_id", order.ID.String()).Msg("payment settled")
		return nil

	case model.NotificationFailed:
		if order.PaymentStatus == model.PaymentFailed || order.Status == model.OrderCancelled {
			return nil
		}

		updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderPendingPayment, model.OrderCancelled, model.PaymentFailed)
		if err != nil {
			return err
		}
		if !updated {
			return nil
		}

		// Only the transition winner releases, so stock cannot be credited
		// twice even under duplicate callbacks.
		if err := s.stockRepo.Release(ctx, order.ID.String(), itemStockLines(items)); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to release stock after payment failure")
			return err
		}

		s.publisher.Publish(ctx, events.TypeOrderCancelled, order.ID.String(), map[string]any{"reason": "payment_failed"})
		s.logger.Info().Str("order_id", order.ID.String()).Msg("payment failed, order cancelled")
		return nil

	default:
		return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("unknown payment status %q", notif.Status))
	}
}

// CancelOrder cancels a PENDING_PAYMENT order on the owner's request and
// releases the held stock.
func (s *checkoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, userID string) error {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(model.OrderCancelled) {
		return &model.InvalidTransitionError{From: string(order.Status), To: string(model.OrderCancelled)}
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderPendingPayment, model.OrderCancelled, order.PaymentStatus)
	if err != nil {
		return err
	}
	if !updated {
		return model.ErrConcurrencyConflict
	}

	if err := s.stockRepo.Release(ctx, order.ID.String(), itemStockLines(items)); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to release stock after cancellation")
		return err
	}

	s.publisher.Publish(ctx, events.TypeOrderCancelled, order.ID.String(), map[string]any{"reason": "user_cancelled"})
	s.logger.Info().Str("order_id", order.ID.String()).Msg("order cancelled by user")
	return nil
}

// UpdateStatus applies an operator-driven fulfilment transition. Cancelling
// through this path releases stock like a user cancellation.
func (s *checkoutService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target model.OrderStatus) error {
	if !target.Valid() {
		return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("unknown order status %q", target))
	}

	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(target) {
		return &model.InvalidTransitionError{From: string(order.Status), To: string(target)}
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, target, order.PaymentStatus)
	if err != nil {
		return err
	}
	if !updated {
		return model.ErrConcurrencyConflict
	}

	if target == model.OrderCancelled {
		if err := s.stockRepo.Release(ctx, order.ID.String(), itemStockLines(items)); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to release stock after operator cancellation")
			return err
		}
		s.publisher.Publish(ctx, events.TypeOrderCancelled, order.ID.String(), map[string]any{"reason": "operator_cancelled"})
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(target)).
		Msg("order status updated")
	return nil
}

// GetOrder retrieves an order with its items.
func (s *checkoutService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, []model.OrderItem, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

// validateRequest rejects malformed checkout requests before any side effect.
func (s *checkoutService) validateRequest(userID string, req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "checkout request is required")
	}
	if userID == "" {
		return model.NewDomainError(model.ErrCodeValidation, "user is required")
	}
	if req.AddressID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeValidation, "addressId is required")
	}
	if req.ShippingMethodID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeValidation, "shippingMethodId is required")
	}
	return nil
}

// compensateStock releases a reservation during saga rollback. Release
// failures are logged loudly: the reconciliation sweep will retry via the
// cancelled order's ledger reference.
func (s *checkoutService) compensateStock(ctx context.Context, orderRef string, lines []model.StockLine, cause string) {
	if err := s.stockRepo.Release(ctx, orderRef, lines); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_ref", orderRef).
			Str("cause", cause).
			Msg("stock compensation failed")
	}
}
