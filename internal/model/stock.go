package model

import (
	"time"

	"github.com/google/uuid"
)

// StockReason classifies a ledger entry. PURCHASE_RECEIPT is the only
// reason that can be fired by the purchase-order workflow.
type StockReason string

const (
	ReasonOrderDecrement     StockReason = "ORDER_DECREMENT"
	ReasonOrderCancelRestock StockReason = "ORDER_CANCEL_RESTOCK"
	ReasonPurchaseReceipt    StockReason = "PURCHASE_RECEIPT"
	ReasonManualAdjustment   StockReason = "MANUAL_ADJUSTMENT"
)

// Valid reports whether the reason is a known variant.
func (r StockReason) Valid() bool {
	switch r {
	case ReasonOrderDecrement, ReasonOrderCancelRestock, ReasonPurchaseReceipt, ReasonManualAdjustment:
		return true
	}
	return false
}

// StockHistoryEntry is an immutable, append-only ledger record. For every
// product, stock_quantity always equals the sum of its deltas.
type StockHistoryEntry struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	ProductID        string      `json:"productId" db:"product_id"`
	Delta            int         `json:"delta" db:"delta"`
	ResultingBalance int         `json:"resultingBalance" db:"resulting_balance"`
	Reason           StockReason `json:"reason" db:"reason"`
	ReferenceID      string      `json:"referenceId" db:"reference_id"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
}

// StockLine pairs a product with a quantity for batch reserve/release calls.
type StockLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// StockHistoryFilter narrows a paginated ledger query.
type StockHistoryFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
