package shopapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// Profile is the shopper contact record used on order payloads.
type Profile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// GetProfile fetches the shopper's contact info.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var result struct {
		Data Profile `json:"data"`
	}
	if err := c.getJSON(ctx, "/v1/profile", nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// ListAddresses returns the shopper's saved addresses.
func (c *Client) ListAddresses(ctx context.Context) ([]types.Address, error) {
	var result struct {
		Data []types.Address `json:"data"`
	}
	if err := c.getJSON(ctx, "/v1/profile/addresses", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetAddress returns one saved address by id.
func (c *Client) GetAddress(ctx context.Context, addressID string) (*types.Address, error) {
	if strings.TrimSpace(addressID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	var result struct {
		Data types.Address `json:"data"`
	}
	path := fmt.Sprintf("/v1/profile/addresses/%s", url.PathEscape(addressID))
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// ListPaymentMethods returns the shopper's saved payment methods.
func (c *Client) ListPaymentMethods(ctx context.Context) ([]types.PaymentMethod, error) {
	var result struct {
		Data []types.PaymentMethod `json:"data"`
	}
	if err := c.getJSON(ctx, "/v1/profile/payment-methods", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetPaymentMethod returns one saved payment method by id.
func (c *Client) GetPaymentMethod(ctx context.Context, methodID string) (*types.PaymentMethod, error) {
	if strings.TrimSpace(methodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}
	var result struct {
		Data types.PaymentMethod `json:"data"`
	}
	path := fmt.Sprintf("/v1/profile/payment-methods/%s", url.PathEscape(methodID))
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}
