package types

// AddressFields carries the structured pieces a shopper fills in. Which
// fields are required depends on the market.
type AddressFields struct {
	Street     string `json:"street"`
	Building   string `json:"building,omitempty"`
	Apartment  string `json:"apartment,omitempty"`
	Entrance   string `json:"entrance,omitempty"`
	Floor      string `json:"floor,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Line2      string `json:"line2,omitempty"`
}

// Address is a saved shopper address: structured fields plus the composed
// full string used on order payloads. FullAddress is never empty once the
// address has passed composition.
type Address struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	FullAddress string        `json:"full_address"`
	Fields      AddressFields `json:"fields"`
	IsDefault   bool          `json:"is_default"`
}
