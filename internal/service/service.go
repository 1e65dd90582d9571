package service

import (
	"context"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService re-validates a user's cart against live catalogue data.
type CartService interface {
	// BuildSnapshot locks in current unit prices and reports adjustments
	// (removed items, price changes) the caller must surface. Read-only.
	BuildSnapshot(ctx context.Context, userID string) (*model.CartSnapshot, error)
}

// CouponService validates discount codes. Usage consumption is deferred to
// the checkout commit phase.
type CouponService interface {
	// Validate checks existence, validity window, remaining usage and the
	// optional minimum subtotal. Returns CouponInvalidError on rejection.
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*model.Coupon, error)

	// Preview returns the discount a code would grant on the given subtotal.
	Preview(ctx context.Context, code string, subtotal decimal.Decimal) (*CouponPreview, error)
}

// CouponPreview is the response of the coupon validation endpoint.
type CouponPreview struct {
	Valid    bool                      `json:"valid"`
	Discount decimal.Decimal           `json:"discount"`
	Reason   model.CouponInvalidReason `json:"reason,omitempty"`
}

// CheckoutService coordinates cart snapshot, coupon validation, stock
// reservation, order persistence and the payment session into one saga.
type CheckoutService interface {
	// CreateOrder runs the checkout saga and returns the payment redirect.
	CreateOrder(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// RetryPayment opens a new payment session for an existing
	// PENDING_PAYMENT order instead of minting a duplicate.
	RetryPayment(ctx context.Context, orderID uuid.UUID, userID string) (*model.CheckoutResponse, error)

	// HandlePaymentCallback applies an asynchronous gateway confirmation.
	// Idempotent under at-least-once delivery.
	HandlePaymentCallback(ctx context.Context, notif model.PaymentNotification) error

	// CancelOrder cancels a PENDING_PAYMENT order and releases its stock.
	CancelOrder(ctx context.Context, orderID uuid.UUID, userID string) error

	// UpdateStatus applies an operator-driven fulfilment transition.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target model.OrderStatus) error

	// GetOrder retrieves an order with its items. Returns nil when not found.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, []model.OrderItem, error)
}

// StockService exposes the read side of the ledger plus manual corrections.
type StockService interface {
	// History returns ledger entries matching the filter, newest first.
	History(ctx context.Context, filter model.StockHistoryFilter) ([]model.StockHistoryEntry, error)

	// Adjust applies a signed manual stock correction.
	Adjust(ctx context.Context, productID string, delta int, note string) error
}

// PurchaseOrderService drives the inbound-stock receiving state machine.
type PurchaseOrderService interface {
	// Advance transitions a purchase order towards the target status.
	// Receiving credits stock exactly once; repeating RECEIVED is a no-op.
	Advance(ctx context.Context, poID uuid.UUID, target model.PurchaseOrderStatus) (*model.PurchaseOrder, error)
}
