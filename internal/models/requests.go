package models

// CreateCartRequest opens a new cart for a user.
type CreateCartRequest struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency,omitempty"`
}

// AddItemRequest adds a product to a cart. Prices are resolved from
// the catalog service, never trusted from the client.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest changes the quantity of an existing line item.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyCouponRequest applies a coupon code to a cart.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// SelectShippingRequest sets the shipping method for a cart.
type SelectShippingRequest struct {
	MethodID string `json:"method_id"`
}

// QuoteItem is a line item supplied directly for a stateless quote.
type QuoteItem struct {
	ProductID         string  `json:"product_id"`
	UnitPrice         float64 `json:"unit_price"`
	OriginalUnitPrice float64 `json:"original_unit_price,omitempty"`
	Quantity          int     `json:"quantity"`
}

// QuoteRequest asks for totals over ad-hoc items without touching any
// stored cart.
type QuoteRequest struct {
	Items            []QuoteItem `json:"items"`
	CouponCode       string      `json:"coupon_code,omitempty"`
	ShippingMethodID string      `json:"shipping_method_id"`
	Currency         string      `json:"currency,omitempty"`
}

// CheckoutRequest finalizes a cart into an order.
type CheckoutRequest struct {
	CardToken string `json:"card_token,omitempty"`
	Notes     string `json:"notes,omitempty"`
}
