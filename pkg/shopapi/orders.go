package shopapi

import (
	"context"
	"strings"

	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// CreateOrderInput is the order-creation payload. UseCurrentCart tells the
// backend to consume the shopper's server-side cart atomically.
type CreateOrderInput struct {
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	SecondaryPhone  string            `json:"secondary_phone,omitempty"`
	DeliveryAddress string            `json:"delivery_address"`
	City            string            `json:"city"`
	State           string            `json:"state,omitempty"`
	PostalCode      string            `json:"postal_code,omitempty"`
	Country         string            `json:"country,omitempty"`
	DeliveryNote    string            `json:"delivery_note,omitempty"`
	DeliveryDate    string            `json:"delivery_date"`
	AddressID       string            `json:"address_id,omitempty"`
	PaymentMethodID string            `json:"payment_method_id,omitempty"`
	PaymentCode     string            `json:"payment_code"`
	UseCurrentCart  bool              `json:"use_current_cart"`
	Items           []types.OrderItem `json:"items,omitempty"`
}

// CreateOrderResult is the confirmation returned on success.
type CreateOrderResult struct {
	OrderNumber string `json:"order_number"`
	TotalAmount int64  `json:"total_amount"`
}

// CreateOrder submits the assembled checkout payload. Validation rejections
// come back as CodeValidation; transport problems as CodeDependency — the
// caller decides retry policy, so this call is never retried internally.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}
	if strings.TrimSpace(input.PaymentCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment code is required")
	}

	var result struct {
		Data CreateOrderResult `json:"data"`
	}
	if err := c.postJSON(ctx, "/v1/orders", input, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}
