package shopapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// OrdersFilter narrows the manager order list.
type OrdersFilter struct {
	Market enums.Market
	Status enums.OrderStatus
	Limit  int
	Offset int
}

// OrderPage is one page of manager-visible orders.
type OrderPage struct {
	Orders  []types.Order `json:"orders"`
	Total   int           `json:"total"`
	HasMore bool          `json:"has_more"`
}

// GetOrders fetches the order list for the manager dashboard.
func (c *Client) GetOrders(ctx context.Context, filter OrdersFilter) (*OrderPage, error) {
	query := url.Values{}
	if filter.Market != "" {
		query.Set("market", filter.Market.String())
	}
	if filter.Status != "" {
		query.Set("status", filter.Status.String())
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	var result struct {
		Data OrderPage `json:"data"`
	}
	if err := c.getJSON(ctx, "/v1/management/orders", query, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// GetOrderDetail fetches a single order scoped to the given market.
func (c *Client) GetOrderDetail(ctx context.Context, orderID string, market enums.Market) (*types.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	query := url.Values{}
	if market != "" {
		query.Set("market", market.String())
	}

	var result struct {
		Data types.Order `json:"data"`
	}
	path := fmt.Sprintf("/v1/management/orders/%s", url.PathEscape(orderID))
	if err := c.getJSON(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// UpdateOrderStatus applies a manager-chosen status to the order.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status enums.OrderStatus) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	path := fmt.Sprintf("/v1/management/orders/%s/status", url.PathEscape(orderID))
	return c.postJSON(ctx, path, map[string]string{"status": status.String()}, nil)
}

// CancelOrder moves the order to cancelled.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	path := fmt.Sprintf("/v1/management/orders/%s/cancel", url.PathEscape(orderID))
	return c.postJSON(ctx, path, nil, nil)
}

// ResumeOrder moves a cancelled order back to pending.
func (c *Client) ResumeOrder(ctx context.Context, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	path := fmt.Sprintf("/v1/management/orders/%s/resume", url.PathEscape(orderID))
	return c.postJSON(ctx, path, nil, nil)
}

// GetDashboardStats fetches the aggregate stats cards.
func (c *Client) GetDashboardStats(ctx context.Context, market enums.Market) (*types.DashboardStats, error) {
	query := url.Values{}
	if market != "" {
		query.Set("market", market.String())
	}
	var result struct {
		Data types.DashboardStats `json:"data"`
	}
	if err := c.getJSON(ctx, "/v1/management/dashboard/stats", query, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// GetRevenueAnalytics fetches the revenue view payload.
func (c *Client) GetRevenueAnalytics(ctx context.Context, market enums.Market) (*types.RevenueAnalytics, error) {
	query := url.Values{}
	if market != "" {
		query.Set("market", market.String())
	}
	var result struct {
		Data types.RevenueAnalytics `json:"data"`
	}
	if err := c.getJSON(ctx, "/v1/management/dashboard/revenue", query, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}
