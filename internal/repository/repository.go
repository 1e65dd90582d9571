package repository

import (
	"context"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines read access to catalogue products. All stock
// mutation goes through StockRepository.
type ProductRepository interface {
	// GetByIDs retrieves the products matching the given IDs. Unknown IDs
	// are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// CartRepository defines access to a user's server-side cart.
type CartRepository interface {
	// GetLines retrieves all cart lines for a user.
	GetLines(ctx context.Context, userID string) ([]model.CartLine, error)

	// Clear removes all cart lines for a user.
	Clear(ctx context.Context, userID string) error
}

// CouponRepository defines access to discount codes.
type CouponRepository interface {
	// GetByCode retrieves an active coupon by its code. Returns nil when no
	// such coupon exists.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// IncrementUsage atomically consumes one redemption slot: the increment
	// succeeds only while usage_count < usage_limit. Returns
	// CouponInvalidError(exhausted) when no slot remains.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// StockRepository is the append-only inventory accounting engine. Every
// stock mutation writes a ledger entry in the same transaction as the
// quantity change.
type StockRepository interface {
	// ReserveBatch atomically decrements stock for every line and appends an
	// ORDER_DECREMENT entry per line. All-or-nothing: any shortfall rolls the
	// whole batch back and surfaces InsufficientStockError.
	ReserveBatch(ctx context.Context, orderRef string, lines []model.StockLine) error

	// Release appends compensating ORDER_CANCEL_RESTOCK entries and restores
	// the quantities.
	Release(ctx context.Context, orderRef string, lines []model.StockLine) error

	// CreditReceipt credits inbound stock with PURCHASE_RECEIPT entries.
	CreditReceipt(ctx context.Context, poRef string, lines []model.StockLine) error

	// Adjust applies a signed manual correction with a MANUAL_ADJUSTMENT entry.
	Adjust(ctx context.Context, productID string, delta int, note string) error

	// History returns ledger entries matching the filter, newest first.
	History(ctx context.Context, filter model.StockHistoryFilter) ([]model.StockHistoryEntry, error)

	// BalanceOf returns the current stock quantity for a product.
	BalanceOf(ctx context.Context, productID string) (int, error)
}

// OrderRepository defines access to durable orders.
type OrderRepository interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, order *model.Order, items []model.OrderItem) error

	// GetByID retrieves an order with its items. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdateStatus transitions order status and/or payment status, guarded by
	// the expected current values so concurrent sweeps and callbacks cannot
	// both win. Returns false when the guard did not match.
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus model.OrderStatus, toStatus model.OrderStatus, paymentStatus model.PaymentStatus) (bool, error)

	// ListStalePending returns orders still PENDING_PAYMENT created before
	// the cutoff, oldest first, bounded by limit.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
}

// PurchaseOrderRepository defines access to inbound purchase orders.
type PurchaseOrderRepository interface {
	// GetByID retrieves a purchase order with its items. Returns nil when
	// not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, []model.PurchaseOrderItem, error)

	// UpdateStatus transitions the status guarded by the expected current
	// status. Returns false when the guard did not match.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.PurchaseOrderStatus) (bool, error)

	// MarkReceived flips the order to RECEIVED and stamps received_at, but
	// only once: a second call returns false without touching the row.
	MarkReceived(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// AddressRepository resolves addresses from the external address book.
type AddressRepository interface {
	// GetByID retrieves an address owned by the user. Returns nil when not
	// found.
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*model.Address, error)
}

// ShippingMethodRepository resolves shipping methods from the registry.
type ShippingMethodRepository interface {
	// GetByID retrieves a shipping method. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error)
}
