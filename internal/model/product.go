package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product. This subsystem only reads
// price/discount data and mutates stock_quantity through the ledger.
type Product struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty" db:"discount_price"`
	StockQuantity int              `json:"stockQuantity" db:"stock_quantity"`
	Archived      bool             `json:"archived" db:"archived"`
	Version       int              `json:"version" db:"version"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}

// EffectivePrice returns the unit price a checkout locks in: the discount
// price when one is set and lower than the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}
