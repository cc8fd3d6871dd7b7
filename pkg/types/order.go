package types

import "github.com/talgatbekov/bazarline-backend/pkg/enums"

// Order is the server-owned order record as returned by the order-management
// API. Immutable from this service's perspective except for status, which
// changes only through manager transitions.
type Order struct {
	ID              string                  `json:"id"`
	OrderNumber     string                  `json:"order_number"`
	Status          enums.OrderStatus       `json:"status"`
	StatusLabel     string                  `json:"status_label,omitempty"`
	StatusColor     string                  `json:"status_color,omitempty"`
	TotalAmount     int64                   `json:"total_amount"`
	Currency        string                  `json:"currency"`
	CustomerName    string                  `json:"customer_name,omitempty"`
	CustomerPhone   string                  `json:"customer_phone,omitempty"`
	DeliveryAddress string                  `json:"delivery_address"`
	DeliveryDate    string                  `json:"delivery_date,omitempty"`
	DeliveryNote    string                  `json:"delivery_note,omitempty"`
	PaymentMethod   enums.PaymentMethodType `json:"payment_method"`
	PaymentLabel    string                  `json:"payment_label,omitempty"`
	Items           []OrderItem             `json:"items,omitempty"`
}

// OrderItem is a frozen copy of a cart line taken at submission time.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
}

// DashboardStats is the aggregate card data for the stats view.
type DashboardStats struct {
	TotalOrders     int   `json:"total_orders"`
	PendingOrders   int   `json:"pending_orders"`
	DeliveredOrders int   `json:"delivered_orders"`
	CancelledOrders int   `json:"cancelled_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
}

// RevenueAnalytics is the revenue view payload.
type RevenueAnalytics struct {
	Currency string         `json:"currency"`
	Total    int64          `json:"total"`
	ByDay    []RevenuePoint `json:"by_day,omitempty"`
}

// RevenuePoint is one day of revenue.
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}
