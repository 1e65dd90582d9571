package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a single line of a user's server-side cart. Read by the
// snapshot builder, never mutated here.
type CartLine struct {
	UserID    string          `json:"-" db:"user_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	SeenPrice decimal.Decimal `json:"seenPrice" db:"seen_price"`
}

// AdjustmentKind describes why a cart line was changed during snapshotting.
type AdjustmentKind string

const (
	AdjustmentItemRemoved  AdjustmentKind = "ITEM_REMOVED"
	AdjustmentPriceChanged AdjustmentKind = "PRICE_CHANGED"
)

// CartAdjustment records a discrepancy between the cart and live catalogue
// data that the caller must surface before proceeding with checkout.
type CartAdjustment struct {
	ProductID string          `json:"productId"`
	Kind      AdjustmentKind  `json:"kind"`
	OldPrice  decimal.Decimal `json:"oldPrice,omitempty"`
	NewPrice  decimal.Decimal `json:"newPrice,omitempty"`
}

// SnapshotLine is a cart line with its unit price locked in at snapshot time,
// immune to catalogue price changes for the remainder of the checkout.
type SnapshotLine struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns quantity times the locked unit price.
func (l SnapshotLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the validated cart state captured at checkout time.
type CartSnapshot struct {
	UserID      string           `json:"userId"`
	Lines       []SnapshotLine   `json:"lines"`
	Adjustments []CartAdjustment `json:"adjustments,omitempty"`
	CapturedAt  time.Time        `json:"capturedAt"`
}

// Subtotal sums all line subtotals.
func (s *CartSnapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
