package enums

import "fmt"

// Market selects the address format and the order data a manager can reach.
type Market string

const (
	MarketDomestic      Market = "domestic"
	MarketInternational Market = "international"
)

var validMarkets = []Market{MarketDomestic, MarketInternational}

// String implements fmt.Stringer.
func (m Market) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Market.
func (m Market) IsValid() bool {
	for _, candidate := range validMarkets {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMarket converts raw input into a Market.
func ParseMarket(value string) (Market, error) {
	for _, candidate := range validMarkets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid market %q", value)
}
