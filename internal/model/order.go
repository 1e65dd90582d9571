package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus tracks fulfilment progress. Transitions are forward-only;
// CANCELLED is reachable only from PENDING_PAYMENT.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderProcessing     OrderStatus = "PROCESSING"
	OrderShipped        OrderStatus = "SHIPPED"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// orderTransitions defines the allowed status transitions.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendingPayment: {OrderProcessing, OrderCancelled},
	OrderProcessing:     {OrderShipped},
	OrderShipped:        {OrderDelivered},
	OrderDelivered:      {},
	OrderCancelled:      {},
}

// CanTransitionTo checks whether the order may move to the target status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known variant.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// PaymentStatus is an axis independent of OrderStatus.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid:   {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

// CanTransitionTo checks whether the payment status may move to the target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Order is created once by the orchestrator and never deleted, only
// transitioned. Monetary fields are always recomputed server-side.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderNumber      string          `json:"orderNumber" db:"order_number"`
	UserID           string          `json:"userId" db:"user_id"`
	AddressID        uuid.UUID       `json:"addressId" db:"address_id"`
	ShippingMethodID uuid.UUID       `json:"shippingMethodId" db:"shipping_method_id"`
	CouponID         *uuid.UUID      `json:"couponId,omitempty" db:"coupon_id"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount         decimal.Decimal `json:"discount" db:"discount"`
	ShippingCost     decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	Total            decimal.Decimal `json:"total" db:"total"`
	Status           OrderStatus     `json:"status" db:"status"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a name/price snapshot frozen at order time, immune to later
// catalogue price changes.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

// CheckoutRequest is the request payload for creating an order.
type CheckoutRequest struct {
	AddressID        uuid.UUID `json:"addressId"`
	ShippingMethodID uuid.UUID `json:"shippingMethodId"`
	CouponCode       *string   `json:"couponCode,omitempty"`
}

// CheckoutResponse is returned from a successful checkout. The caller
// redirects the user to PaymentURL; the order stays PENDING_PAYMENT until
// the gateway calls back.
type CheckoutResponse struct {
	OrderID     uuid.UUID        `json:"orderId"`
	OrderNumber string           `json:"orderNumber"`
	Total       decimal.Decimal  `json:"total"`
	PaymentURL  string           `json:"paymentUrl"`
	Adjustments []CartAdjustment `json:"adjustments,omitempty"`
}

// PaymentNotification is the asynchronous confirmation delivered by the
// payment gateway, possibly more than once.
type PaymentNotification struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
}

// Payment gateway callback statuses.
const (
	NotificationSettled = "settled"
	NotificationFailed  = "failed"
)

// Address is resolved from the external address book.
type Address struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID string    `json:"userId" db:"user_id"`
	Line1  string    `json:"line1" db:"line1"`
	City   string    `json:"city" db:"city"`
}

// ShippingMethod is resolved from the shipping method registry.
type ShippingMethod struct {
	ID   uuid.UUID       `json:"id" db:"id"`
	Name string          `json:"name" db:"name"`
	Cost decimal.Decimal `json:"cost" db:"cost"`
}
