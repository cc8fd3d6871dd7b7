package enums

import "fmt"

// DashboardView identifies which dashboard surface is currently active.
type DashboardView string

const (
	DashboardViewStats       DashboardView = "stats"
	DashboardViewOrders      DashboardView = "orders"
	DashboardViewRevenue     DashboardView = "revenue"
	DashboardViewOrderDetail DashboardView = "order_detail"
	DashboardViewSettings    DashboardView = "settings"
)

var validDashboardViews = []DashboardView{
	DashboardViewStats,
	DashboardViewOrders,
	DashboardViewRevenue,
	DashboardViewOrderDetail,
	DashboardViewSettings,
}

// String implements fmt.Stringer.
func (d DashboardView) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DashboardView.
func (d DashboardView) IsValid() bool {
	for _, candidate := range validDashboardViews {
		if candidate == d {
			return true
		}
	}
	return false
}

// SuppressesPolling reports whether background refresh must stay off while
// the view is open. Detail and settings views would be disrupted by an
// in-flight refresh.
func (d DashboardView) SuppressesPolling() bool {
	return d == DashboardViewOrderDetail || d == DashboardViewSettings
}

// ParseDashboardView converts raw input into a DashboardView.
func ParseDashboardView(value string) (DashboardView, error) {
	for _, candidate := range validDashboardViews {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dashboard view %q", value)
}
