package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus transitions are forward-only. RECEIVED is terminal and
// credits stock exactly once; CANCELLED is terminal with no stock effect.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderOrdered   PurchaseOrderStatus = "ORDERED"
	PurchaseOrderReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderCancelled PurchaseOrderStatus = "CANCELLED"
)

var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderPending:   {PurchaseOrderOrdered, PurchaseOrderCancelled},
	PurchaseOrderOrdered:   {PurchaseOrderReceived, PurchaseOrderCancelled},
	PurchaseOrderReceived:  {},
	PurchaseOrderCancelled: {},
}

// CanTransitionTo checks whether the purchase order may move to the target.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	for _, next := range purchaseOrderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known variant.
func (s PurchaseOrderStatus) Valid() bool {
	_, ok := purchaseOrderTransitions[s]
	return ok
}

// PurchaseOrder is an inbound-stock workflow document. Receiving it is the
// only path that increases stock.
type PurchaseOrder struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	SupplierID  uuid.UUID           `json:"supplierId" db:"supplier_id"`
	Status      PurchaseOrderStatus `json:"status" db:"status"`
	TotalAmount decimal.Decimal     `json:"totalAmount" db:"total_amount"`
	ReceivedAt  *time.Time          `json:"receivedAt,omitempty" db:"received_at"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" db:"updated_at"`
}

// PurchaseOrderItem is a single inbound line.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `json:"-" db:"id"`
	PurchaseOrderID uuid.UUID       `json:"-" db:"purchase_order_id"`
	ProductID       string          `json:"productId" db:"product_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	UnitCost        decimal.Decimal `json:"unitCost" db:"unit_cost"`
}
