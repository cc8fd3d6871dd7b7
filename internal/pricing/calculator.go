package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// Quote is the priced breakdown of a cart. All amounts are in the smallest
// currency unit. Discount is informational only: unit prices already carry
// it, so Total never subtracts it again.
type Quote struct {
	Subtotal    int64  `json:"subtotal"`
	Discount    int64  `json:"discount"`
	DeliveryFee int64  `json:"delivery_fee"`
	Tax         int64  `json:"tax"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

// Calculator derives a Quote from cart lines. It has no error conditions:
// an empty cart prices to zeros plus the delivery fee.
type Calculator struct {
	deliveryFee int64
	taxRateBPS  int64
	currency    string
}

func NewCalculator(deliveryFee, taxRateBasisPoints int64, currency string) *Calculator {
	return &Calculator{
		deliveryFee: deliveryFee,
		taxRateBPS:  taxRateBasisPoints,
		currency:    currency,
	}
}

func (c *Calculator) Price(items []types.CartLineItem) Quote {
	var subtotal, discount int64
	for _, item := range items {
		qty := int64(item.Quantity)
		subtotal += item.UnitPrice * qty
		if item.OriginalUnitPrice > item.UnitPrice {
			discount += (item.OriginalUnitPrice - item.UnitPrice) * qty
		}
	}

	tax := c.taxOn(subtotal)

	return Quote{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: c.deliveryFee,
		Tax:         tax,
		Total:       subtotal + c.deliveryFee + tax,
		Currency:    c.currency,
	}
}

// taxOn applies the configured rate with round-half-up. Basis points keep
// the rate exact in config; decimal keeps the rounding exact here.
func (c *Calculator) taxOn(subtotal int64) int64 {
	if c.taxRateBPS == 0 || subtotal == 0 {
		return 0
	}
	rate := decimal.NewFromInt(c.taxRateBPS).Div(decimal.NewFromInt(10000))
	return decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()
}
