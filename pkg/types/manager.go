package types

import "github.com/talgatbekov/bazarline-backend/pkg/enums"

// ManagerStatus is the result of the manager status API check. It is cached
// per authentication session and never partially trusted.
type ManagerStatus struct {
	IsManager         bool           `json:"is_manager"`
	Role              string         `json:"role"`
	AccessibleMarkets []enums.Market `json:"accessible_markets"`
	IsActive          bool           `json:"is_active"`
}

// Allows reports whether the status authorizes dashboard access at all.
func (m ManagerStatus) Allows() bool {
	return m.IsManager && m.IsActive
}

// CanAccessMarket reports whether the manager may read the given market.
func (m ManagerStatus) CanAccessMarket(market enums.Market) bool {
	for _, candidate := range m.AccessibleMarkets {
		if candidate == market {
			return true
		}
	}
	return false
}
