package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON               = "INVALID_JSON"
	ErrCodeValidation                = "VALIDATION_ERROR"
	ErrCodeEmptyCart                 = "EMPTY_CART"
	ErrCodeInsufficientStock         = "INSUFFICIENT_STOCK"
	ErrCodeCouponInvalid             = "COUPON_INVALID"
	ErrCodeAddressNotFound           = "ADDRESS_NOT_FOUND"
	ErrCodeShippingMethodNotFound    = "SHIPPING_METHOD_NOT_FOUND"
	ErrCodeOrderNotFound             = "ORDER_NOT_FOUND"
	ErrCodePurchaseOrderNotFound     = "PURCHASE_ORDER_NOT_FOUND"
	ErrCodeInvalidTransition         = "INVALID_TRANSITION"
	ErrCodePaymentGatewayUnavailable = "PAYMENT_GATEWAY_UNAVAILABLE"
	ErrCodeConcurrencyConflict       = "CONCURRENCY_CONFLICT"
	ErrCodeUnauthorised              = "UNAUTHORIZED"
	ErrCodeForbidden                 = "FORBIDDEN"
	ErrCodeInternalError             = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart                 = NewDomainError(ErrCodeEmptyCart, "Cart is empty or contains no purchasable items")
	ErrAddressNotFound           = NewDomainError(ErrCodeAddressNotFound, "Address not found")
	ErrShippingMethodNotFound    = NewDomainError(ErrCodeShippingMethodNotFound, "Shipping method not found")
	ErrOrderNotFound             = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrPurchaseOrderNotFound     = NewDomainError(ErrCodePurchaseOrderNotFound, "Purchase order not found")
	ErrPaymentGatewayUnavailable = NewDomainError(ErrCodePaymentGatewayUnavailable, "Payment gateway is unavailable, please retry")
	ErrConcurrencyConflict       = NewDomainError(ErrCodeConcurrencyConflict, "Concurrent update conflict, please retry")
)

// InsufficientStockError reports exactly how much stock remained when a
// reservation failed.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// CouponInvalidReason narrows why a coupon was rejected.
type CouponInvalidReason string

const (
	CouponNotFound     CouponInvalidReason = "notFound"
	CouponNotYetActive CouponInvalidReason = "notYetActive"
	CouponExpired      CouponInvalidReason = "expired"
	CouponExhausted    CouponInvalidReason = "exhausted"
	CouponMinSubtotal  CouponInvalidReason = "minSubtotal"
)

// CouponInvalidError reports the specific reason a coupon failed validation.
type CouponInvalidError struct {
	Code   string
	Reason CouponInvalidReason
}

func (e *CouponInvalidError) Error() string {
	return fmt.Sprintf("coupon %s invalid: %s", e.Code, e.Reason)
}

// InvalidTransitionError reports a rejected state machine transition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}
