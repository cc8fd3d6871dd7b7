package types

import "github.com/talgatbekov/bazarline-backend/pkg/enums"

// PaymentMethod is a saved payment method as returned by the profile API.
// Card display fields are masked; at most one method per shopper is default.
type PaymentMethod struct {
	ID        string                  `json:"id"`
	Type      enums.PaymentMethodType `json:"type"`
	CardBrand string                  `json:"card_brand,omitempty"`
	CardLast4 string                  `json:"card_last4,omitempty"`
	IsDefault bool                    `json:"is_default"`
}
