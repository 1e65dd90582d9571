package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates how a coupon's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Valid reports whether the discount type is a known variant.
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

// Coupon is a limited-use discount code. usage_count never exceeds
// usage_limit; the increment happens through an atomic compare-and-increment
// at order commit time, not at validation time.
type Coupon struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Code          string           `json:"code" db:"code"`
	DiscountType  DiscountType     `json:"discountType" db:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discountValue" db:"discount_value"`
	MinSubtotal   *decimal.Decimal `json:"minSubtotal,omitempty" db:"min_subtotal"`
	ValidFrom     time.Time        `json:"validFrom" db:"valid_from"`
	ValidTo       time.Time        `json:"validTo" db:"valid_to"`
	UsageLimit    int              `json:"usageLimit" db:"usage_limit"`
	UsageCount    int              `json:"usageCount" db:"usage_count"`
	Active        bool             `json:"active" db:"active"`
}

// Exhausted reports whether the coupon has no redemption slots left.
func (c *Coupon) Exhausted() bool {
	return c.UsageCount >= c.UsageLimit
}

// Discount computes the discount amount for the given subtotal, capped at
// the subtotal so a fixed coupon can never push the total negative.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		d = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		d = c.DiscountValue
	default:
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}
