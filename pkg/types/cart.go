package types

// CartLineItem is one cart line as stored by the external cart store. Unit
// prices are in the smallest currency unit. OriginalUnitPrice is zero when
// the line carries no discount.
type CartLineItem struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	UnitPrice         int64  `json:"unit_price"`
	OriginalUnitPrice int64  `json:"original_unit_price,omitempty"`
	Quantity          int    `json:"quantity"`
	Size              string `json:"size,omitempty"`
	Color             string `json:"color,omitempty"`
}
